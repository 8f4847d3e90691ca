package core

import (
	"context"

	"go.uber.org/zap"
)

// SpamFilterService is the core service for spam detection
type SpamFilterService struct {
	pipeline  *Pipeline
	logger    *zap.Logger
	threshold float64
	whitelist SenderWhitelist
}

// NewSpamFilterService creates a new spam filter service. The whitelist
// may be nil, in which case every sender is classified.
func NewSpamFilterService(
	pipeline *Pipeline,
	logger *zap.Logger,
	threshold float64,
	whitelist SenderWhitelist,
) *SpamFilterService {
	return &SpamFilterService{
		pipeline:  pipeline,
		logger:    logger,
		threshold: threshold,
		whitelist: whitelist,
	}
}

// AnalyzeEmail checks if an email is spam
func (s *SpamFilterService) AnalyzeEmail(ctx context.Context, email *Email) (*ClassificationResult, error) {
	// Check whitelist first
	if s.whitelist != nil && s.whitelist.IsWhitelisted(email.From) {
		s.logger.Info("Skipping spam check for whitelisted domain",
			zap.String("sender", email.From),
			zap.String("action", "whitelist_bypass"))

		result := &ClassificationResult{
			IsSpam:      false,
			Score:       0.0,
			Explanation: "Sender domain is whitelisted",
			ModelUsed:   "whitelist",
		}
		return result, nil
	}

	tokens := s.pipeline.TokenizeEmail(email)
	result, err := s.pipeline.ClassifyTokens(ctx, tokens)
	if err != nil {
		return nil, err
	}

	// Apply the configured threshold to the classifier's score
	result.IsSpam = result.Score >= s.threshold
	s.logger.Debug("Email analyzed",
		zap.String("sender", email.From),
		zap.Float64("score", result.Score),
		zap.Bool("is_spam", result.IsSpam),
		zap.Int("tokens", len(tokens)))

	return result, nil
}

// IsSpam determines if a result is spam based on the threshold
func (s *SpamFilterService) IsSpam(result *ClassificationResult) bool {
	return result.Score >= s.threshold
}
