// Package apiclient is the typed HTTP client for the voicedoc REST surface,
// used by the CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voicedoc/internal/model"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the server at baseURL. token, when non-empty, is
// sent as a bearer token on requests that need identity.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// CreateDocument is the multipart create payload.
type CreateDocument struct {
	DocumentName  string
	Transcription string
	Translation   string
	Language      string
	OwnerID       string
	Audio         []byte
	Filename      string
	ContentType   string
}

func (c *Client) Create(ctx context.Context, in CreateDocument) (*model.AudioDocument, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", in.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(in.Audio); err != nil {
		return nil, err
	}
	writer.WriteField("documentName", in.DocumentName)
	writer.WriteField("transcription", in.Transcription)
	writer.WriteField("translation", in.Translation)
	writer.WriteField("language", in.Language)
	writer.WriteField("ownerId", in.OwnerID)
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var doc model.AudioDocument
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.AudioDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/audio/"+id, nil)
	if err != nil {
		return nil, err
	}
	var doc model.AudioDocument
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) List(ctx context.Context) ([]model.DocumentSummary, error) {
	return c.list(ctx, "/audio/metadata", false)
}

// ListMine lists the caller's documents; the bearer token supplies identity.
func (c *Client) ListMine(ctx context.Context) ([]model.DocumentSummary, error) {
	return c.list(ctx, "/audio/u/metadata", true)
}

func (c *Client) list(ctx context.Context, path string, withToken bool) ([]model.DocumentSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if withToken {
		if c.token == "" {
			return nil, fmt.Errorf("apiclient: identity token required for %s", path)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	var summaries []model.DocumentSummary
	if err := c.do(req, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *Client) Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.AudioDocument, error) {
	payload, err := json.Marshal(upd)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/audio/"+id, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var doc model.AudioDocument
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/audio/"+id, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// FetchBlob downloads the audio payload from the document's public URL.
func (c *Client) FetchBlob(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apiclient: blob fetch returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("apiclient: %s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, raw)
	}
	if !env.Success {
		if env.Code != "" {
			return fmt.Errorf("apiclient: %s (%s)", env.Error, env.Code)
		}
		return fmt.Errorf("apiclient: %s", env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("apiclient: decoding response: %w", err)
		}
	}
	return nil
}
