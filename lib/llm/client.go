// Package llm is a minimal client for an OpenAI-compatible chat
// completions endpoint. It exists for the assistant's intent parsing and
// prose formatting collaborators; the query engine never touches it.
package llm

import (
	"context"
	"fmt"
	"time"

	"coursefinder-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/llm")

type Config struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Client struct {
	http  *resty.Client
	model string
}

func NewClient(cfg Config) Client {
	http := resty.New().
		SetBaseURL(cfg.BaseUrl).
		SetAuthToken(cfg.ApiKey).
		SetTimeout(time.Second * 60)
	telemetry.InstrumentResty(http, "lib/llm")
	return Client{http: http, model: cfg.Model}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages    []Message
	Temperature float32
}

type chatCompletionBody struct {
	Model       string    `json:"model"`
	Temperature float32   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete returns the first choice's message content.
func (c Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := tracer.Start(ctx, "Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Int("messages", len(req.Messages)),
	)

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var out chatCompletionResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(chatCompletionBody{
			Model:       c.model,
			Temperature: req.Temperature,
			Messages:    req.Messages,
		}).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return fail(fmt.Errorf("chat completion: %w", err))
	}
	if res.IsError() {
		return fail(fmt.Errorf("chat completion: status %s", res.Status()))
	}
	if out.Error != nil {
		return fail(fmt.Errorf("chat completion: %s", out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return fail(fmt.Errorf("chat completion: empty choices"))
	}

	return out.Choices[0].Message.Content, nil
}
