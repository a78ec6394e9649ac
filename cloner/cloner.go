package cloner

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/repository"
)

// CloneWithRetry clones one repository, reporting transfer progress to the given writer. When the
// remote rejects the transfer for authentication reasons, the prompter is asked for credentials and
// the clone is retried, up to maxAuthAttempts times. Any other failure is returned as is.
func CloneWithRetry(cfg repository.Config, progress io.Writer, prompter CredentialPrompter) (*repository.Repository, error) {
	var (
		auth transport.AuthMethod
		err  error
	)

	for attempt := 0; attempt < maxAuthAttempts; attempt++ {
		var repo *repository.Repository

		repo, err = repository.Clone(cfg, progress, auth)
		if err == nil {
			return repo, nil
		}

		if !isAuthError(err) {
			return nil, err
		}

		cfg.Logger.Warnf("Authentication required for %q, prompting for credentials", cfg.Name)

		if auth, err = promptAuthMethod(cfg.URL, prompter); err != nil {
			return nil, err
		}
	}

	return nil, err
}

// Orchestrator clones a batch of repositories concurrently. Concurrency is bounded by a semaphore;
// a failed clone never cancels its siblings, it is reported in the aggregate error at the end
// instead. This way a flaky remote costs one repository, not the batch.
type Orchestrator struct {
	renderer *ProgressRenderer
	prompter CredentialPrompter
	jobs     int
	tasks    []repository.Config
}

// NewOrchestrator creates an orchestrator running at most jobs clones at once. Zero or negative
// means one goroutine per repository.
func NewOrchestrator(renderer *ProgressRenderer, prompter CredentialPrompter, jobs int) *Orchestrator {
	return &Orchestrator{renderer: renderer, prompter: prompter, jobs: jobs}
}

// Add queues one repository for cloning.
func (o *Orchestrator) Add(cfg repository.Config) {
	o.tasks = append(o.tasks, cfg)
}

type cloneResult struct {
	name string
	err  error
}

// Run clones every queued repository and blocks until all transfers settle. The returned error
// aggregates one entry per failed clone, naming the repository; nil means everything landed.
func (o *Orchestrator) Run() error {
	if len(o.tasks) == 0 {
		return nil
	}

	jobs := o.jobs
	if jobs <= 0 || jobs > len(o.tasks) {
		jobs = len(o.tasks)
	}

	if err := o.renderer.Start(); err != nil {
		return errors.WithStackTrace(err)
	}

	semaphore := make(chan struct{}, jobs)
	results := make(chan cloneResult, len(o.tasks))

	var wg sync.WaitGroup

	for _, cfg := range o.tasks {
		bar := o.renderer.AddBar(cfg.Name)

		wg.Add(1)

		go func(cfg repository.Config, bar *TransferBar) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			_, err := CloneWithRetry(cfg, bar, o.prompter)

			bar.Finish()

			if err != nil {
				err = CloneError{Name: cfg.Name, URL: cfg.URL, Underlying: err}
			}

			results <- cloneResult{name: cfg.Name, err: err}
		}(cfg, bar)
	}

	wg.Wait()
	close(results)

	if err := o.renderer.Stop(); err != nil {
		return errors.WithStackTrace(err)
	}

	var errs *errors.MultiError

	for result := range results {
		if result.err != nil {
			errs = errs.Append(result.err)
		}
	}

	return errs.ErrorOrNil()
}

// CloneError names the repository whose clone failed inside an aggregate error.
type CloneError struct {
	Name       string
	URL        string
	Underlying error
}

func (err CloneError) Error() string {
	return fmt.Sprintf("could not clone %q from %s: %v", err.Name, err.URL, err.Underlying)
}

func (err CloneError) Unwrap() error {
	return err.Underlying
}
