package dropbox

import (
	"context"
	"fmt"
	"io"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/users"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
	"github.com/custodia-labs/coach/internal/ratelimit"
	"github.com/custodia-labs/coach/internal/retry"
)

// Ensure Store implements the DocumentStore and AccountResolver interfaces.
var (
	_ driven.DocumentStore   = (*Store)(nil)
	_ driven.AccountResolver = (*Store)(nil)
)

// maxDownloadBytes bounds a single file download.
const maxDownloadBytes = 64 << 20

// filesAPI is the subset of files.Client used by Store.
type filesAPI interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
}

// usersAPI is the subset of users.Client used by Store.
type usersAPI interface {
	GetCurrentAccount() (*users.FullAccount, error)
}

// clientFactory builds SDK clients bound to one access token.
type clientFactory interface {
	Files(token string) filesAPI
	Users(token string) usersAPI
}

type sdkClients struct{}

func (sdkClients) config(token string) dropbox.Config {
	return dropbox.Config{Token: token, LogLevel: dropbox.LogOff}
}

func (c sdkClients) Files(token string) filesAPI { return files.New(c.config(token)) }
func (c sdkClients) Users(token string) usersAPI { return users.New(c.config(token)) }

// Store lists and downloads Dropbox files.
type Store struct {
	root    string
	limiter *ratelimit.Limiter
	policy  retry.Policy
	clients clientFactory
}

// NewStore creates a Dropbox document store rooted at settings.Root.
func NewStore(settings domain.DropboxSettings) *Store {
	return &Store{
		root:    normaliseRoot(settings.Root),
		limiter: ratelimit.New(serviceName, settings.RequestsPerSecond),
		policy:  retry.DefaultPolicy(),
		clients: sdkClients{},
	}
}

// normaliseRoot converts a folder setting to the SDK's path form, where
// the account root is the empty string.
func normaliseRoot(root string) string {
	if root == "" || root == "/" {
		return ""
	}
	if root[0] != '/' {
		root = "/" + root
	}
	return root
}

// ListFiles returns every file under the configured root, recursively.
func (s *Store) ListFiles(ctx context.Context, credential string) ([]domain.DocumentHandle, error) {
	if credential == "" {
		return nil, domain.ErrAuthRequired
	}
	client := s.clients.Files(credential)

	arg := files.NewListFolderArg(s.root)
	arg.Recursive = true

	page, err := call(ctx, s, "list folder", func() (*files.ListFolderResult, error) {
		return client.ListFolder(arg)
	})
	if err != nil {
		return nil, err
	}

	var handles []domain.DocumentHandle
	for {
		handles = appendFiles(handles, page.Entries)
		if !page.HasMore {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cursor := page.Cursor
		page, err = call(ctx, s, "list folder continue", func() (*files.ListFolderResult, error) {
			return client.ListFolderContinue(files.NewListFolderContinueArg(cursor))
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Dropbox: listed %d files under %q", len(handles), s.root)
	return handles, nil
}

func appendFiles(handles []domain.DocumentHandle, entries []files.IsMetadata) []domain.DocumentHandle {
	for _, entry := range entries {
		f, ok := entry.(*files.FileMetadata)
		if !ok {
			continue
		}
		handles = append(handles, fileToHandle(f))
	}
	return handles
}

func fileToHandle(f *files.FileMetadata) domain.DocumentHandle {
	locator := f.PathLower
	if locator == "" {
		locator = f.PathDisplay
	}
	return domain.DocumentHandle{
		ID:                 f.Id,
		DisplayName:        f.Name,
		LocatorPath:        locator,
		SizeBytes:          int64(f.Size),
		ContentFingerprint: f.ContentHash,
		Downloadable:       f.IsDownloadable,
		ModifiedAt:         f.ServerModified,
	}
}

// Download returns the content of the file at locatorPath.
func (s *Store) Download(ctx context.Context, credential, locatorPath string) ([]byte, error) {
	if credential == "" {
		return nil, domain.ErrAuthRequired
	}
	if locatorPath == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	client := s.clients.Files(credential)

	return call(ctx, s, "download "+locatorPath, func() ([]byte, error) {
		_, body, err := client.Download(files.NewDownloadArg(locatorPath))
		if err != nil {
			return nil, err
		}
		defer body.Close()

		data, err := io.ReadAll(io.LimitReader(body, maxDownloadBytes+1))
		if err != nil {
			return nil, &domain.UpstreamError{Service: serviceName, Message: "read body", Err: err}
		}
		if len(data) > maxDownloadBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, locatorPath, maxDownloadBytes)
		}
		return data, nil
	})
}

// AccountIdentifier returns the email address of the credential's account.
func (s *Store) AccountIdentifier(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", domain.ErrAuthRequired
	}
	client := s.clients.Users(credential)

	account, err := call(ctx, s, "get current account", client.GetCurrentAccount)
	if err != nil {
		return "", err
	}
	if account.Email != "" {
		return account.Email, nil
	}
	if account.Name != nil {
		return account.Name.DisplayName, nil
	}
	return account.AccountId, nil
}

// call runs one SDK request behind the rate limiter with retries.
func call[T any](ctx context.Context, s *Store, op string, fn func() (T, error)) (T, error) {
	return retry.Do(ctx, s.policy, "dropbox "+op, func(ctx context.Context) (T, error) {
		var zero T
		if err := s.limiter.Wait(ctx); err != nil {
			return zero, err
		}
		v, err := fn()
		if err != nil {
			if d := retryAfter(err); d > 0 {
				s.limiter.RecordRateLimitError(d)
			}
			return zero, classify(op, err)
		}
		return v, nil
	})
}
