package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"github.com/prakan1684/SurveyAnalyst/handler"
	"github.com/prakan1684/SurveyAnalyst/internal/integrations/openai"
	"github.com/prakan1684/SurveyAnalyst/internal/integrations/paramstore"
	"github.com/prakan1684/SurveyAnalyst/internal/render"
	"github.com/prakan1684/SurveyAnalyst/internal/repository"
	"github.com/prakan1684/SurveyAnalyst/internal/usecase"
)

const modelParameterSuffix = "/config/openai_model"

func main() {
	ctx := context.Background()

	// Local runs read .env; in Lambda the file is absent and this is a no-op.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	surveyTable := mustEnv("SURVEY_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), surveyTable)
	if err != nil {
		slog.Error("failed to create survey store", "err", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}
	renderer := render.New(logger)

	// ---- Handler ----
	resolveModel := modelResolver(ssmClient, paramPrefix)
	factory := func(ctx context.Context, surveyID string) (handler.Chatbot, error) {
		model, err := resolveModel(ctx)
		if err != nil {
			return nil, err
		}
		return usecase.New(ctx, openaiClient, store, renderer, surveyID, model, logger)
	}

	h, err := handler.NewHandler(factory, openaiClient, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

// modelResolver returns the chat model name, preferring the OPENAI_MODEL
// environment variable and falling back to parameter store. The SSM lookup
// happens once per cold start.
func modelResolver(getter *paramstore.Client, prefix string) func(context.Context) (string, error) {
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		return func(context.Context) (string, error) { return v, nil }
	}
	var (
		once  sync.Once
		model string
		err   error
	)
	return func(ctx context.Context) (string, error) {
		once.Do(func() {
			model, err = getter.GetParameter(ctx, strings.TrimRight(prefix, "/")+modelParameterSuffix)
		})
		return model, err
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
