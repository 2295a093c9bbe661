package retrieval

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/claimscope/internal/worker"
)

// QueryEngine is the surface the batch processor needs from the engine
type QueryEngine interface {
	Query(ctx context.Context, req Request) (*Result, error)
}

// queryJob runs one question through the engine
type queryJob struct {
	engine QueryEngine
	req    Request
}

// Execute runs the query job
func (j *queryJob) Execute(ctx context.Context) worker.Result {
	res, err := j.engine.Query(ctx, j.req)
	return &QueryOutcome{
		Question: j.req.Query,
		Result:   res,
		Error:    err,
	}
}

// QueryOutcome is the result of one batched question
type QueryOutcome struct {
	Question string
	Result   *Result
	Error    error
}

// GetError returns the error from the outcome
func (o *QueryOutcome) GetError() error {
	return o.Error
}

// BatchProcessor runs many questions against one viewer/target pair
// concurrently. Every question goes through the full pipeline; access
// scope is re-resolved per query, never shared across the batch.
type BatchProcessor struct {
	engine      QueryEngine
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(engine QueryEngine, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		engine:      engine,
		concurrency: concurrency,
	}
}

// ProcessQuestions runs the questions concurrently and returns an outcome
// per question. Order of outcomes follows completion, not submission.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, viewerID, targetID string, questions []string) []*QueryOutcome {
	if len(questions) == 0 {
		return []*QueryOutcome{}
	}

	pool := worker.NewPool(b.concurrency)
	pool.Start()

	for _, q := range questions {
		pool.Submit(&queryJob{
			engine: b.engine,
			req: Request{
				Query:        q,
				ViewerID:     viewerID,
				TargetUserID: targetID,
			},
		})
	}

	results := pool.Wait()

	outcomes := make([]*QueryOutcome, len(results))
	for i, r := range results {
		outcomes[i] = r.(*QueryOutcome)
	}
	return outcomes
}

// ProcessFile reads questions from a file and runs them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, viewerID, targetID, filePath string) ([]*QueryOutcome, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return b.ProcessQuestions(ctx, viewerID, targetID, questions), nil
}

// ReadQuestionsFromFile reads questions from a file (one per line)
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
