// Package qa answers legal questions by retrieving the most similar corpus
// documents and asking a chat model to answer from them alone.
package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/legalqa-go/internal/budget"
	"github.com/54b3r/legalqa-go/internal/logging"
	"github.com/54b3r/legalqa-go/internal/rag"
)

var (
	// ErrNotConfigured is returned when no chat model is available.
	ErrNotConfigured = errors.New("qa: LLM is not configured")

	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("qa: question must be a non-empty string")
)

// Answer is the result of a single question.
type Answer struct {
	// Answer is the model's reply, or FallbackAnswer.
	Answer string `json:"answer"`

	// Sources are the retrieved documents in rank order.
	Sources []rag.Result `json:"sources"`
}

// TopScore returns the highest source score, or 0 when there are no sources.
func (a *Answer) TopScore() float64 {
	if len(a.Sources) == 0 {
		return 0
	}
	return a.Sources[0].Score
}

// Config holds the dependencies required to construct an Answerer.
type Config struct {
	// ChatModel writes the answer. Nil means the LLM is not configured; Ask
	// then returns ErrNotConfigured.
	ChatModel model.BaseChatModel

	// Retriever ranks corpus documents against the question. Required.
	Retriever rag.Retriever

	// ProviderName prefixes model errors, e.g. "Groq API failed: ...".
	ProviderName string

	// TopK is the number of documents retrieved per question.
	// Defaults to rag.DefaultTopK if zero.
	TopK int

	// MaxContextTokens is the estimated input budget. Retrieved paragraphs are
	// trimmed lowest-rank first to fit. Zero disables trimming.
	MaxContextTokens int
}

// Answerer runs the retrieve-then-generate pipeline.
type Answerer struct {
	chatModel        model.BaseChatModel
	retriever        rag.Retriever
	providerName     string
	topK             int
	maxContextTokens int
}

// New constructs an Answerer from the provided Config.
func New(cfg *Config) (*Answerer, error) {
	if cfg == nil || cfg.Retriever == nil {
		return nil, fmt.Errorf("qa: Retriever must not be nil")
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}
	name := cfg.ProviderName
	if name == "" {
		name = "LLM"
	}
	return &Answerer{
		chatModel:        cfg.ChatModel,
		retriever:        cfg.Retriever,
		providerName:     name,
		topK:             topK,
		maxContextTokens: cfg.MaxContextTokens,
	}, nil
}

// Configured reports whether a chat model is available.
func (a *Answerer) Configured() bool {
	return a.chatModel != nil
}

// Ask retrieves the top documents for question and asks the model to answer
// from them. When nothing relevant is found the fallback answer is returned
// with no sources and the model is not called.
func (a *Answerer) Ask(ctx context.Context, question string) (*Answer, error) {
	return a.run(ctx, question, nil)
}

// AskStream behaves like Ask but writes the answer to w as the model produces
// it. The fallback answer is written in one piece.
func (a *Answerer) AskStream(ctx context.Context, question string, w io.Writer) (*Answer, error) {
	if w == nil {
		w = io.Discard
	}
	return a.run(ctx, question, w)
}

// run is the shared pipeline. A nil w selects Generate instead of Stream.
func (a *Answerer) run(ctx context.Context, question string, w io.Writer) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	log := logging.FromContext(ctx)

	results, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		return nil, fmt.Errorf("qa: retrieval failed: %w", err)
	}

	if len(results) == 0 || results[0].Score == 0 {
		log.Info("qa: no relevant documents, returning fallback answer")
		if w != nil {
			if _, err := io.WriteString(w, FallbackAnswer); err != nil {
				return nil, fmt.Errorf("qa: write error: %w", err)
			}
		}
		return &Answer{Answer: FallbackAnswer, Sources: []rag.Result{}}, nil
	}

	messages := a.buildMessages(ctx, results, question)

	start := time.Now()
	var text string
	if w == nil {
		text, err = a.generate(ctx, messages)
	} else {
		text, err = a.stream(ctx, messages, w)
	}
	if err != nil {
		return nil, a.modelError(err)
	}

	log.Info("qa: answer generated",
		slog.String("provider", a.providerName),
		slog.Int("sources", len(results)),
		slog.Float64("top_score", results[0].Score),
		slog.Int("answer_chars", len(text)),
		slog.Duration("duration", time.Since(start)),
	)
	return &Answer{Answer: text, Sources: results}, nil
}

// connectError reports that the provider could not be reached. Its message
// tells the user what to check; the cause stays available to errors.Is/As.
type connectError struct {
	provider string
	cause    error
}

func (e *connectError) Error() string {
	return fmt.Sprintf("Failed to connect to %s API. Please check your internet connection and API key.", e.provider)
}

func (e *connectError) Unwrap() error { return e.cause }

// modelError names the provider in a chat model failure. Network failures get
// a fixed hint instead of the transport detail.
func (a *Answerer) modelError(err error) error {
	if isConnectError(err) {
		return &connectError{provider: a.providerName, cause: err}
	}
	return fmt.Errorf("%s API failed: %w", a.providerName, err)
}

// isConnectError reports transport failures. Deadlines are left alone so the
// caller can still classify them as timeouts. SDKs that flatten errors to
// strings are matched on their message.
func isConnectError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connect") || strings.Contains(msg, "network")
}

// buildMessages fits the ranked paragraphs into the context budget and
// renders the prompt.
func (a *Answerer) buildMessages(ctx context.Context, results []rag.Result, question string) []*schema.Message {
	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Text
	}
	if a.maxContextTokens <= 0 {
		return buildMessages(docs, question)
	}

	overhead := budget.EstimateMessages(buildMessages(nil, question))
	trimmed := budget.TrimDocuments(overhead, docs, a.maxContextTokens)
	if totalLen(trimmed) < totalLen(docs) {
		logging.FromContext(ctx).Warn("budget: trimmed retrieved paragraphs to fit context window",
			slog.Int("retrieved", len(docs)),
			slog.Int("retained", len(trimmed)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}
	return buildMessages(trimmed, question)
}

func totalLen(docs []string) int {
	n := 0
	for _, d := range docs {
		n += len(d)
	}
	return n
}

// generate performs a single blocking completion.
func (a *Answerer) generate(ctx context.Context, messages []*schema.Message) (string, error) {
	msg, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err //nolint:wrapcheck // wrapped by run with the provider name
	}
	if msg == nil {
		return "", fmt.Errorf("empty response")
	}
	return msg.Content, nil
}

// stream copies streamed chunks to w and returns the full text.
func (a *Answerer) stream(ctx context.Context, messages []*schema.Message, w io.Writer) (string, error) {
	sr, err := a.chatModel.Stream(ctx, messages)
	if err != nil {
		return "", err //nolint:wrapcheck // wrapped by run with the provider name
	}
	defer sr.Close()

	var buf strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stream receive error: %w", err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		buf.WriteString(msg.Content)
		if _, err := io.WriteString(w, msg.Content); err != nil {
			return "", fmt.Errorf("write error: %w", err)
		}
	}
	return buf.String(), nil
}
