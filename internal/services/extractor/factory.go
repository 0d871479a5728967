package extractor

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
)

// NewExtractor creates the extractor implementation selected by
// configuration. Static fetch suffices for server-rendered sources;
// rendered fetch executes client-side script to obtain the final DOM.
func NewExtractor(config common.ExtractorConfig, logger arbor.ILogger) (interfaces.Extractor, error) {
	switch config.Mode {
	case "static":
		logger.Info().Str("mode", config.Mode).Msg("Initializing content extractor")
		return NewStaticExtractor(config, logger), nil

	case "rendered":
		logger.Info().Str("mode", config.Mode).Msg("Initializing content extractor")
		return NewRenderedExtractor(config, logger), nil

	default:
		return nil, fmt.Errorf("invalid extractor mode '%s': must be 'static' or 'rendered'", config.Mode)
	}
}
