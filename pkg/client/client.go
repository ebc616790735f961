package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/naveenspark/biblio/pkg/domain"
)

// DefaultBaseURL is the backend the client talks to when none is configured.
const DefaultBaseURL = "http://localhost:8087/api"

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client is the library API client. Credentials are attached by the
// transport it is built with, never by the client itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client sending requests through rt.
// A nil rt uses http.DefaultTransport.
func New(baseURL string, rt http.RoundTripper, timeout time.Duration) *Client {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// Login exchanges email and password for a raw bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	body, err := c.doRaw(ctx, http.MethodPost, "/auth/login", creds)
	if err != nil {
		if isInactive(err) {
			return "", fmt.Errorf("client.Login: %w", ErrInactiveUser)
		}
		return "", fmt.Errorf("client.Login: %w", err)
	}
	tok := parseToken(body)
	if tok == "" {
		return "", fmt.Errorf("client.Login: %w", ErrEmptyToken)
	}
	return tok, nil
}

// CurrentUser returns the profile of the credential's owner.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/auth/current/", &u); err != nil {
		return nil, fmt.Errorf("client.CurrentUser: %w", err)
	}
	return &u, nil
}

// Register signs up a reader.
func (c *Client) Register(ctx context.Context, r domain.Registration) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/auth/register", r, &u); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &u, nil
}

// RegisterAdmin creates a staff account. Requires an admin credential.
func (c *Client) RegisterAdmin(ctx context.Context, r domain.Registration) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/auth/register-admin", r, &u); err != nil {
		return nil, fmt.Errorf("client.RegisterAdmin: %w", err)
	}
	return &u, nil
}

// --- Books ---

// ListBooks returns the whole catalog.
func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.get(ctx, "/book/all", &books); err != nil {
		return nil, fmt.Errorf("client.ListBooks: %w", err)
	}
	return books, nil
}

// ListBooksByType returns the catalog filtered by category.
func (c *Client) ListBooksByType(ctx context.Context, bookType string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.get(ctx, "/book/all/"+url.PathEscape(bookType), &books); err != nil {
		return nil, fmt.Errorf("client.ListBooksByType: %w", err)
	}
	return books, nil
}

// FindBooksByTitle searches the catalog by title.
func (c *Client) FindBooksByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.get(ctx, "/book/find/"+url.PathEscape(title), &books); err != nil {
		return nil, fmt.Errorf("client.FindBooksByTitle: %w", err)
	}
	return books, nil
}

// CreateBook adds a title to the catalog.
func (c *Client) CreateBook(ctx context.Context, req domain.NewBookRequest) (*domain.Book, error) {
	var created domain.Book
	if err := c.post(ctx, "/book/new", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateBook: %w", err)
	}
	return &created, nil
}

// CreateCopy adds a physical copy of an existing title.
func (c *Client) CreateCopy(ctx context.Context, req domain.NewCopyRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/book/newcopy", req, nil); err != nil {
		return fmt.Errorf("client.CreateCopy: %w", err)
	}
	return nil
}

// ListCopiesByTitle returns the copies of a title.
func (c *Client) ListCopiesByTitle(ctx context.Context, title string) ([]domain.BookCopy, error) {
	var copies []domain.BookCopy
	if err := c.get(ctx, "/book/copy/"+url.PathEscape(title), &copies); err != nil {
		return nil, fmt.Errorf("client.ListCopiesByTitle: %w", err)
	}
	return copies, nil
}

// --- Loans ---

// CreateLoan lends a copy to a user.
func (c *Client) CreateLoan(ctx context.Context, req domain.NewLoanRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/booking/new", req, nil); err != nil {
		return fmt.Errorf("client.CreateLoan: %w", err)
	}
	return nil
}

// FindLoansByEmail returns a reader's loans.
func (c *Client) FindLoansByEmail(ctx context.Context, email string) ([]domain.Loan, error) {
	var loans []domain.Loan
	if err := c.get(ctx, "/booking/find/"+url.PathEscape(email), &loans); err != nil {
		return nil, fmt.Errorf("client.FindLoansByEmail: %w", err)
	}
	return loans, nil
}

// ReturnLoan records the return of a loan. active is the loan state to
// store; a return sets it to false.
func (c *Client) ReturnLoan(ctx context.Context, id int64, active bool) (*domain.Loan, error) {
	var loan domain.Loan
	body := map[string]bool{"estado": active}
	if err := c.post(ctx, "/booking/return/"+strconv.FormatInt(id, 10), body, &loan); err != nil {
		return nil, fmt.Errorf("client.ReturnLoan: %w", err)
	}
	return &loan, nil
}

// --- Fines ---

// FindFinesByEmail returns a reader's fines.
func (c *Client) FindFinesByEmail(ctx context.Context, email string) ([]domain.Fine, error) {
	var fines []domain.Fine
	if err := c.get(ctx, "/fine/find/"+url.PathEscape(email), &fines); err != nil {
		return nil, fmt.Errorf("client.FindFinesByEmail: %w", err)
	}
	return fines, nil
}

// --- Readers ---

// FindReader looks a reader up by email.
func (c *Client) FindReader(ctx context.Context, email string) (*domain.Reader, error) {
	var r domain.Reader
	if err := c.get(ctx, "/reader/find/"+url.PathEscape(email), &r); err != nil {
		return nil, fmt.Errorf("client.FindReader: %w", err)
	}
	return &r, nil
}

// UpdateReaderState activates or suspends a reader. The body is the bare
// JSON literal true or false.
func (c *Client) UpdateReaderState(ctx context.Context, email string, active bool) (*domain.Reader, error) {
	var r domain.Reader
	if err := c.post(ctx, "/reader/state/"+url.PathEscape(email), json.RawMessage(strconv.FormatBool(active)), &r); err != nil {
		return nil, fmt.Errorf("client.UpdateReaderState: %w", err)
	}
	return &r, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	data, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20)) // 8 MB max, covers cover images
	if resp.StatusCode >= 400 {
		if readErr != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	return respBody, nil
}

// errorMessage extracts a readable message from an error body, which the
// backend sends as {"error": ...}, {"message": ...}, a JSON string or text.
func errorMessage(body []byte) string {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Error != "" {
			return apiErr.Error
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	var s string
	if json.Unmarshal(body, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(body))
}

// parseToken accepts the token as plain text, a JSON string or {"access": ...}.
func parseToken(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return strings.TrimSpace(s)
	}
	var wrapped struct {
		Access string `json:"access"`
		Token  string `json:"token"`
	}
	if json.Unmarshal(trimmed, &wrapped) == nil {
		if wrapped.Access != "" {
			return wrapped.Access
		}
		return wrapped.Token
	}
	return string(trimmed)
}

func isInactive(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(httpErr.Message), InactiveUserMessage)
}
