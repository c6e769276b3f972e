package keys

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// SeedFromSecrets fills empty provider lists from AWS Secrets Manager so a
// fresh server deployment starts with working keys. Environment variables
// win over secrets, and keys the user already stored are never touched.
func SeedFromSecrets(ctx context.Context, cfg aws.Config, prefix string, store *Store, logger *slog.Logger) {
	client := secretsmanager.NewFromConfig(cfg)

	sources := map[script.Provider]struct {
		envVar   string
		secretID string
	}{
		script.ProviderGemini: {"GEMINI_API_KEY", prefix + "GEMINI_API_KEY"},
		script.ProviderOpenAI: {"OPENAI_API_KEY", prefix + "OPENAI_API_KEY"},
	}

	for provider, src := range sources {
		if len(store.List(provider)) > 0 {
			continue
		}

		key := os.Getenv(src.envVar)
		if key == "" {
			result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
				SecretId: &src.secretID,
			})
			if err != nil {
				logger.Info("Secret not found", "secret_id", src.secretID, "error", err)
				continue
			}
			if result.SecretString != nil {
				key = *result.SecretString
			}
		}
		if key == "" {
			continue
		}

		if _, err := store.Add(provider, key); err != nil {
			logger.Error("Failed to seed key", "provider", provider, "error", err)
			continue
		}
		logger.Info("Seeded provider key", "provider", provider)
	}
}
