package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"complitracker/internal/domain"
)

func TestSignerList_RoundTrip(t *testing.T) {
	signers := domain.SignerList{"alice@example.com", "bob@example.com"}

	val, err := signers.Value()
	assert.NoError(t, err)

	var decoded domain.SignerList
	assert.NoError(t, decoded.Scan(val))
	assert.Equal(t, signers, decoded)
}

func TestSignerList_ScanVariants(t *testing.T) {
	var fromString domain.SignerList
	assert.NoError(t, fromString.Scan(`["alice@example.com"]`))
	assert.Equal(t, domain.SignerList{"alice@example.com"}, fromString)

	var fromNil domain.SignerList
	assert.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, domain.SignerList{}, fromNil)

	var fromBad domain.SignerList
	assert.Error(t, fromBad.Scan(42))
}

func TestSignerStatusMap_RoundTrip(t *testing.T) {
	statuses := domain.SignerStatusMap{"alice@example.com": "completed"}

	val, err := statuses.Value()
	assert.NoError(t, err)

	var decoded domain.SignerStatusMap
	assert.NoError(t, decoded.Scan(val))
	assert.Equal(t, statuses, decoded)
}

func TestSignatureStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.SignatureStatusPending.IsTerminal())
	assert.True(t, domain.SignatureStatusCompleted.IsTerminal())
	assert.True(t, domain.SignatureStatusDeclined.IsTerminal())
	assert.True(t, domain.SignatureStatusCancelled.IsTerminal())
}
