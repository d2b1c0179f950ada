package crophealth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/agrimarket/backend/internal/apperr"
)

const classifierService = "crop disease API"

// Classifier identifies a crop disease from an image.
type Classifier interface {
	Identify(ctx context.Context, filename, contentType string, image []byte) (*Diagnosis, error)
}

// MockClassifier returns a fixed Late Blight diagnosis. Used when no
// classifier API is configured.
type MockClassifier struct{}

func (MockClassifier) Identify(context.Context, string, string, []byte) (*Diagnosis, error) {
	return &Diagnosis{
		Name:           "Late Blight",
		ScientificName: "Phytophthora infestans",
		Probability:    0.89,
		Treatment: Treatment{
			Prevention: []string{
				"Plant resistant varieties when available",
				"Ensure proper spacing between plants for good air circulation",
				"Avoid overhead irrigation and water early in the day",
				"Rotate crops (3-4 year rotation)",
				"Remove and destroy all infected plant debris",
			},
			Chemical: []string{
				"Chlorothalonil-based fungicides (preventative)",
				"Mancozeb-based products (preventative)",
				"Metalaxyl or mefenoxam combined with a protectant fungicide",
				"Copper-based fungicides for organic production",
			},
			Biological: []string{
				"Bacillus subtilis-based products",
				"Trichoderma harzianum-based products",
				"Compost tea applications to boost plant immunity",
			},
		},
	}, nil
}

// HTTPClassifier posts the image as multipart/form-data with a bearer key.
type HTTPClassifier struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewHTTPClassifier(url, apiKey string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClassifier{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPClassifier) Identify(ctx context.Context, filename, contentType string, image []byte) (*Diagnosis, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreatePart(imagePartHeader(filename, contentType))
	if err != nil {
		return nil, apperr.Internal("failed to build classifier request", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, apperr.Internal("failed to build classifier request", err)
	}
	if err := w.Close(); err != nil {
		return nil, apperr.Internal("failed to build classifier request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, &body)
	if err != nil {
		return nil, apperr.Internal("failed to build classifier request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, apperr.UpstreamCause(classifierService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.UpstreamCause(classifierService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream(classifierService, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	d, err := parseClassifierResponse(respBody)
	if err != nil {
		return nil, apperr.UpstreamCause(classifierService, err)
	}
	return d, nil
}

func imagePartHeader(filename, contentType string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	return h
}

// --- response shapes ---

type rawTreatment struct {
	Prevention json.RawMessage `json:"prevention"`
	Chemical   json.RawMessage `json:"chemical"`
	Biological json.RawMessage `json:"biological"`
}

type suggestion struct {
	Name           string        `json:"name"`
	ScientificName string        `json:"scientific_name"`
	Probability    float64       `json:"probability"`
	Treatment      *rawTreatment `json:"treatment"`
	Details        struct {
		Treatment *rawTreatment `json:"treatment"`
	} `json:"details"`
}

type classifierResponse struct {
	Result struct {
		Disease struct {
			Suggestions []suggestion `json:"suggestions"`
		} `json:"disease"`
	} `json:"result"`
	suggestion
}

// parseClassifierResponse accepts the suggestions envelope or a flat body
// and keeps the most probable suggestion.
func parseClassifierResponse(body []byte) (*Diagnosis, error) {
	var resp classifierResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}

	candidates := resp.Result.Disease.Suggestions
	if len(candidates) == 0 && resp.Name != "" {
		candidates = []suggestion{resp.suggestion}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("classifier returned no suggestions")
	}

	best := candidates[0]
	for _, s := range candidates[1:] {
		if s.Probability > best.Probability {
			best = s
		}
	}

	t := best.Treatment
	if t == nil {
		t = best.Details.Treatment
	}
	return &Diagnosis{
		Name:           best.Name,
		ScientificName: best.ScientificName,
		Probability:    best.Probability,
		Treatment:      t.normalize(),
	}, nil
}

func (t *rawTreatment) normalize() Treatment {
	out := Treatment{Prevention: []string{}, Chemical: []string{}, Biological: []string{}}
	if t == nil {
		return out
	}
	out.Prevention = stringList(t.Prevention)
	out.Chemical = stringList(t.Chemical)
	out.Biological = stringList(t.Biological)
	return out
}

// stringList reads either a JSON string or a list of strings.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		return []string{strings.TrimSpace(single)}
	}
	return []string{}
}
