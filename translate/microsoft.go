package translate

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/ristryder/ts2ass/common"
)

const (
	DefaultMicrosoftEndpoint = "https://api.cognitive.microsofttranslator.com"

	defaultBackoffMultiplier = 2.0
	maximumErrorBodyRunes    = 200
)

var ErrMaxRetries = errors.New("max retries exceeded")

type MicrosoftConfig struct {
	APIKey        string
	Endpoint      string
	From          string
	HTTPClient    *http.Client
	Logger        *slog.Logger
	Region        string
	RetryAttempts int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration
	Timeout       time.Duration
	To            string
}

// Microsoft calls the Microsoft Translator text API v3.
type Microsoft struct {
	client *http.Client
	config MicrosoftConfig
	logger *slog.Logger
	url    string
}

type microsoftRequestItem struct {
	Text string `json:"Text"`
}

type microsoftResponseItem struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type microsoftErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewMicrosoft(config MicrosoftConfig) (*Microsoft, error) {
	if config.APIKey == "" {
		return nil, errors.New("microsoft translator requires an API key")
	}

	if config.Endpoint == "" {
		config.Endpoint = DefaultMicrosoftEndpoint
	}
	if config.From == "" {
		config.From = "ja"
	}
	if config.To == "" {
		config.To = "en"
	}
	if config.RetryMaxDelay <= 0 {
		config.RetryMaxDelay = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	endpoint, parseErr := url.Parse(strings.TrimRight(config.Endpoint, "/") + "/translate")
	if parseErr != nil {
		return nil, errors.Wrapf(parseErr, "failed to parse translator endpoint %s", config.Endpoint)
	}

	query := endpoint.Query()
	query.Set("api-version", "3.0")
	query.Set("from", config.From)
	query.Set("to", config.To)
	endpoint.RawQuery = query.Encode()

	return &Microsoft{
		client: client,
		config: config,
		logger: config.Logger.With(slog.String("translator", "microsoft")),
		url:    endpoint.String(),
	}, nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

// decompressReader closes both the decoder and the response body.
type decompressReader struct {
	closer io.Closer
	reader io.Reader
}

func (d *decompressReader) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReader) Close() error {
	if closer, isCloser := d.reader.(io.Closer); isCloser {
		_ = closer.Close()
	}

	return d.closer.Close()
}

func (m *Microsoft) wrapDecompression(response *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(response.Header.Get("Content-Encoding")) {
	case "gzip":
		reader, gzipErr := gzip.NewReader(response.Body)
		if gzipErr != nil {
			return nil, errors.Wrap(gzipErr, "failed to read gzip response")
		}

		return &decompressReader{closer: response.Body, reader: reader}, nil
	case "br":
		return &decompressReader{closer: response.Body, reader: brotli.NewReader(response.Body)}, nil
	}

	return response.Body, nil
}

func (m *Microsoft) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if requestErr != nil {
		return nil, errors.Wrap(requestErr, "failed to create translation request")
	}

	request.Header.Set("Accept-Encoding", "gzip, br")
	request.Header.Set("Content-Type", "application/json; charset=UTF-8")
	request.Header.Set("Ocp-Apim-Subscription-Key", m.config.APIKey)
	if m.config.Region != "" {
		request.Header.Set("Ocp-Apim-Subscription-Region", m.config.Region)
	}
	request.Header.Set("X-ClientTraceId", uuid.NewString())

	return request, nil
}

//Sends the request, retrying transport failures and retryable status codes
//with exponential backoff.
func (m *Microsoft) do(ctx context.Context, body []byte) (*http.Response, error) {
	var lastErr error
	delay := m.config.RetryDelay

	for attempt := 0; attempt <= m.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			m.logger.Debug("retrying translation request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay = min(time.Duration(float64(delay)*defaultBackoffMultiplier), m.config.RetryMaxDelay)
		}

		request, requestErr := m.newRequest(ctx, body)
		if requestErr != nil {
			return nil, requestErr
		}

		response, responseErr := m.client.Do(request)
		if responseErr != nil {
			lastErr = responseErr
			m.logger.Warn("translation request failed",
				slog.String("error", responseErr.Error()),
				slog.Int("attempt", attempt),
			)

			if errors.Is(responseErr, context.Canceled) || errors.Is(responseErr, context.DeadlineExceeded) {
				return nil, responseErr
			}

			continue
		}

		if isRetryableStatus(response.StatusCode) {
			lastErr = errors.Newf("retryable status code: %d", response.StatusCode)
			m.logger.Warn("retryable status code",
				slog.Int("status", response.StatusCode),
				slog.Int("attempt", attempt),
			)
			_ = response.Body.Close()

			continue
		}

		return response, nil
	}

	if lastErr != nil {
		return nil, errors.Wrapf(ErrMaxRetries, "%v", lastErr)
	}

	return nil, ErrMaxRetries
}

func (m *Microsoft) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	body, marshalErr := json.Marshal([]microsoftRequestItem{{Text: text}})
	if marshalErr != nil {
		return "", errors.Wrap(marshalErr, "failed to encode translation request")
	}

	response, doErr := m.do(ctx, body)
	if doErr != nil {
		return "", &FailureError{Cause: doErr, Text: text}
	}

	reader, decompressErr := m.wrapDecompression(response)
	if decompressErr != nil {
		_ = response.Body.Close()

		return "", &FailureError{Cause: decompressErr, Text: text}
	}
	defer reader.Close()

	responseBody, readErr := io.ReadAll(reader)
	if readErr != nil {
		return "", &FailureError{Cause: errors.Wrap(readErr, "failed to read translation response"), Text: text}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var errorResponse microsoftErrorResponse
		if json.Unmarshal(responseBody, &errorResponse) == nil && errorResponse.Error.Message != "" {
			return "", &FailureError{
				Cause: errors.Newf("status %d: %s (code %d)", response.StatusCode, errorResponse.Error.Message, errorResponse.Error.Code),
				Text:  text,
			}
		}

		return "", &FailureError{
			Cause: errors.Newf("status %d: %s", response.StatusCode, common.Preview(string(responseBody), maximumErrorBodyRunes)),
			Text:  text,
		}
	}

	var items []microsoftResponseItem
	if unmarshalErr := json.Unmarshal(responseBody, &items); unmarshalErr != nil {
		return "", &FailureError{Cause: errors.Wrap(unmarshalErr, "failed to decode translation response"), Text: text}
	}

	if len(items) == 0 || len(items[0].Translations) == 0 {
		return "", &FailureError{Cause: errors.New("translation response has no translations"), Text: text}
	}

	return items[0].Translations[0].Text, nil
}
