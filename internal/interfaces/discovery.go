package interfaces

import (
	"context"

	"github.com/ternarybob/nuntius/internal/models"
)

// DiscoveryService lists tracked companies and their articles from the
// upstream discovery API.
type DiscoveryService interface {
	Companies(ctx context.Context) ([]models.Company, error)
}
