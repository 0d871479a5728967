package interfaces

import (
	"context"

	"github.com/ternarybob/nuntius/internal/models"
)

// TokenSource performs the client-credentials exchange against the token
// issuer. A failed exchange returns a models.Failure of kind auth.
type TokenSource interface {
	Authenticate(ctx context.Context) (string, error)
}

// Analyzer sends extracted article text to the structured-analysis
// service and validates the response shape. Transport failures and
// malformed-content failures are distinguishable by failure kind.
type Analyzer interface {
	Analyze(ctx context.Context, token, text string) (*models.StructuredAnalysis, error)
}
