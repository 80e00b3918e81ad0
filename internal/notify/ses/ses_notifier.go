package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"complitracker/internal/domain"
	"complitracker/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESNotifier creates a Notifier that emails every signer when a signature
// request changes status.
func NewSESNotifier(region, fromAddress, fromName string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

var statusSubjects = map[domain.SignatureStatus]string{
	domain.SignatureStatusPending:   "Signature request updated",
	domain.SignatureStatusCompleted: "Signature request completed",
	domain.SignatureStatusDeclined:  "Signature request declined",
	domain.SignatureStatusCancelled: "Signature request cancelled",
}

func (n *sesNotifier) NotifyStatusChanged(ctx context.Context, req *domain.SignatureRequest) error {
	subject := statusSubjects[req.Status]
	if subject == "" {
		subject = "Signature request updated"
	}

	textBody := n.buildTextBody(req)
	from := fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: req.Signers,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func (n *sesNotifier) buildTextBody(req *domain.SignatureRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The signature request for document %s is now %s.\n\n", req.DocumentID, req.Status)
	if len(req.SignerStatuses) > 0 {
		b.WriteString("Signer statuses:\n")
		for _, signer := range req.Signers {
			if status, ok := req.SignerStatuses[signer]; ok {
				fmt.Fprintf(&b, "  %s: %s\n", signer, status)
			}
		}
	}
	fmt.Fprintf(&b, "\n%s Team", n.fromName)
	return b.String()
}
