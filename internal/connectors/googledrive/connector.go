// Package googledrive ingests Google Docs, Sheets and PDFs from a
// Drive account. Discovery lists the supported types with their
// modification times as fingerprints; fetching exports Docs to plain
// text and Sheets to CSV, and downloads PDFs as stored. Every API
// call goes through a shared rate limiter kept below the per-user
// Drive quota.
package googledrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// Compile-time interface check.
var _ driven.Connector = (*Connector)(nil)

// Google Workspace MIME types.
const (
	mimeGoogleDoc   = "application/vnd.google-apps.document"
	mimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	mimePDF         = "application/pdf"
)

// Export formats for Google Workspace documents.
const (
	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
)

const (
	// pageSize is the Files.List page size.
	pageSize = 100

	// maxFetchSize caps downloaded and exported content at 5MB.
	// Files reporting a larger size are skipped at discovery.
	maxFetchSize = 5 * 1024 * 1024

	// requestsPerSecond and burst pace API calls below Google's
	// 10 requests/sec/user quota.
	requestsPerSecond = 8
	burst             = 10
)

// listQuery restricts discovery to the supported document types.
const listQuery = "trashed = false and (mimeType = '" + mimeGoogleDoc +
	"' or mimeType = '" + mimeGoogleSheet +
	"' or mimeType = '" + mimePDF + "')"

// listFields selects the file attributes discovery needs.
const listFields = "nextPageToken, files(id, name, mimeType, modifiedTime, size, webViewLink)"

// Connector implements driven.Connector for the Drive corpus.
type Connector struct {
	credentialsFile string
	tokenFile       string
	limiter         *rate.Limiter

	mu     sync.Mutex
	svc    *drive.Service
	closed bool
}

// New creates a Drive connector reading the OAuth client secret and
// stored token from the given files. Nothing is read and no network
// call is made until the connector is used.
func New(credentialsFile, tokenFile string) *Connector {
	return &Connector{
		credentialsFile: credentialsFile,
		tokenFile:       tokenFile,
		limiter:         rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "googledrive"
}

// Corpus returns the corpus this connector feeds.
func (c *Connector) Corpus() domain.Corpus {
	return domain.CorpusDrive
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:      false,
		RequiresAuth:       true,
		SupportsValidation: true,
		SupportsPagination: true,
	}
}

// service returns the Drive API client, building it on first use so
// that constructing the connector never touches the credential files.
func (c *Connector) service(ctx context.Context) (*drive.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connector is closed")
	}
	if c.svc != nil {
		return c.svc, nil
	}

	ts, err := tokenSource(ctx, c.credentialsFile, c.tokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	c.svc = svc
	return svc, nil
}

// Validate checks that the stored credentials grant Drive access by
// fetching the account profile.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := svc.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return wrapAPIError("validate drive access", err)
	}
	return nil
}

// Discover lists every supported document with its modification time
// as the fingerprint. Listing is ordered by name so the processing
// order is stable between runs.
func (c *Connector) Discover(ctx context.Context) ([]domain.SourceDocument, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	var docs []domain.SourceDocument
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.Files.List().
			Q(listQuery).
			PageSize(pageSize).
			OrderBy("name").
			Fields(googleapi.Field(listFields)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, wrapAPIError("list drive files", err)
		}

		for _, file := range page.Files {
			if file.Size > maxFetchSize {
				logger.Debug("Skipping oversized drive file %s (%d bytes)", file.Name, file.Size)
				continue
			}
			docs = append(docs, toSourceDocument(file))
		}

		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Fetch exports Docs to plain text and Sheets to CSV; PDFs download
// as stored. The RawDocument's MIMEType is the fetched format, which
// is what extractor dispatch keys on.
func (c *Connector) Fetch(ctx context.Context, doc domain.SourceDocument) (*domain.RawDocument, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	var (
		content  []byte
		mimeType string
	)
	switch doc.MIMEType {
	case mimeGoogleDoc:
		content, err = c.export(ctx, svc, doc.ID, exportMimeText)
		mimeType = exportMimeText
	case mimeGoogleSheet:
		content, err = c.export(ctx, svc, doc.ID, exportMimeCSV)
		mimeType = exportMimeCSV
	case mimePDF:
		content, err = c.download(ctx, svc, doc.ID)
		mimeType = mimePDF
	default:
		return nil, fmt.Errorf("%w: drive file %s has type %s", domain.ErrUnsupportedType, doc.ID, doc.MIMEType)
	}
	if err != nil {
		return nil, err
	}

	return &domain.RawDocument{
		SourceID: doc.ID,
		URI:      doc.URI,
		MIMEType: mimeType,
		Content:  content,
	}, nil
}

// Watch is not supported; Drive changes are picked up on the next run.
func (c *Connector) Watch(context.Context) (<-chan driven.ChangeEvent, error) {
	return nil, errors.New("googledrive: watch is not supported")
}

// Close releases the API client. Safe to call multiple times.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.svc = nil
	return nil
}

// export converts a Google Workspace document to the given format.
func (c *Connector) export(ctx context.Context, svc *drive.Service, fileID, exportMime string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return nil, wrapAPIError("export "+fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read export of %s: %v", domain.ErrProvider, fileID, err)
	}
	return data, nil
}

// download retrieves a file's stored bytes.
func (c *Connector) download(ctx context.Context, svc *drive.Service, fileID string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, wrapAPIError("download "+fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrProvider, fileID, err)
	}
	return data, nil
}

// toSourceDocument maps a Drive file to the pipeline's document
// identity. The stored MIME type is kept here; the export type only
// appears on the fetched RawDocument.
func toSourceDocument(file *drive.File) domain.SourceDocument {
	category := domain.CategoryProse
	if file.MimeType == mimeGoogleSheet {
		category = domain.CategoryTabular
	}

	uri := file.WebViewLink
	if uri == "" {
		uri = fmt.Sprintf("gdrive://files/%s", file.Id)
	}

	return domain.SourceDocument{
		ID:          file.Id,
		Corpus:      domain.CorpusDrive,
		URI:         uri,
		Title:       file.Name,
		Category:    category,
		MIMEType:    file.MimeType,
		Fingerprint: file.ModifiedTime,
		Metadata: map[string]string{
			"web_link": file.WebViewLink,
			"size":     strconv.FormatInt(file.Size, 10),
		},
	}
}

// wrapAPIError classifies a Drive API failure. Credential problems
// become ErrAuthRequired with re-authorisation guidance; everything
// else is a provider failure.
func wrapAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s failed with status %d; re-authorise and save a fresh token",
				domain.ErrAuthRequired, op, gerr.Code)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s: drive rate limit exceeded", domain.ErrProvider, op)
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrProvider, op, err)
}
