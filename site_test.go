package site_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"sync"
	"testing"

	site "github.com/eureka-automation/eureka-site"
	"github.com/eureka-automation/eureka-site/internal/di"
	"github.com/eureka-automation/eureka-site/internal/metrics"
)

type upstream struct {
	mu       sync.Mutex
	calls    int
	payloads []map[string]any
}

func (u *upstream) handler(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	_ = json.NewDecoder(r.Body).Decode(&payload)
	u.mu.Lock()
	u.calls++
	u.payloads = append(u.payloads, payload)
	u.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (u *upstream) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

func newModule(t *testing.T) (*site.Module, *upstream) {
	t.Helper()
	rec := &upstream{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	t.Cleanup(srv.Close)

	cfg := site.DefaultConfig()
	cfg.Generator.OutputDir = t.TempDir()
	cfg.Careers.Endpoint = srv.URL
	cfg.Logging.Level = "error"

	module, err := site.New(context.Background(), cfg,
		di.WithFS(os.DirFS(".")),
		di.WithLogOutput(io.Discard),
		di.WithMetrics(metrics.New()),
	)
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}
	return module, rec
}

func pdf(name string) *site.Attachment {
	data := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	return &site.Attachment{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}
}

func janeDoe() site.Application {
	return site.Application{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Phone:        "0812345678",
		Position:     "PLC Engineer",
		PDPAAccepted: true,
	}
}

func TestApplicationFormEndToEnd(t *testing.T) {
	module, rec := newModule(t)

	var transitions []site.FormStatus
	form := module.ApplicationForm(site.WithStatusHook(func(status site.FormStatus) {
		transitions = append(transitions, status)
	}))
	if got := form.Status(); got != "idle" {
		t.Fatalf("expected idle form, got %q", got)
	}

	form.SetFields(janeDoe())
	if err := form.Attach(pdf("jane-doe.pdf")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	receipt, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !receipt.Confirmed {
		t.Fatal("expected confirmed receipt")
	}

	want := []site.FormStatus{"submitting", "succeeded"}
	if !reflect.DeepEqual(transitions, want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	state := form.State()
	if state.Fields != (site.Application{}) {
		t.Fatalf("expected fields to reset, got %+v", state.Fields)
	}
	if state.Attachment != "" {
		t.Fatalf("expected attachment to reset, got %q", state.Attachment)
	}

	if rec.count() != 1 {
		t.Fatalf("expected one POST, got %d", rec.count())
	}
	payload := rec.payloads[0]
	if payload["name"] != "Jane Doe" || payload["position"] != "PLC Engineer" || payload["pdpaAccepted"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload["pdfData"].(string))
	if err != nil || !bytes.HasPrefix(decoded, []byte("%PDF")) {
		t.Fatalf("expected base64 pdf, err=%v", err)
	}
}

func TestApplicationFormRejectsBeforeNetwork(t *testing.T) {
	module, rec := newModule(t)

	cases := map[string]func(*site.ApplicationForm){
		"missing consent": func(f *site.ApplicationForm) {
			app := janeDoe()
			app.PDPAAccepted = false
			f.SetFields(app)
			_ = f.Attach(pdf("cv.pdf"))
		},
		"missing last name": func(f *site.ApplicationForm) {
			app := janeDoe()
			app.LastName = ""
			f.SetFields(app)
			_ = f.Attach(pdf("cv.pdf"))
		},
		"missing resume": func(f *site.ApplicationForm) {
			f.SetFields(janeDoe())
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			form := module.ApplicationForm()
			setup(form)
			if _, err := form.Submit(context.Background()); err == nil {
				t.Fatal("expected validation error")
			}
			if got := form.Status(); got != "idle" {
				t.Fatalf("expected form to stay idle, got %q", got)
			}
		})
	}

	form := module.ApplicationForm()
	oversized := pdf("big.pdf")
	oversized.Size = site.DefaultConfig().Careers.MaxFileSize + 1
	if err := form.Attach(oversized); err == nil {
		t.Fatal("expected oversized resume to be rejected")
	}
	wrongType := pdf("cv.docx")
	wrongType.ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	if err := form.Attach(wrongType); err == nil {
		t.Fatal("expected non-pdf resume to be rejected")
	}

	if rec.count() != 0 {
		t.Fatalf("expected no network calls, got %d", rec.count())
	}
}

func TestGalleryFilterAndPlayback(t *testing.T) {
	module, _ := newModule(t)
	gallery := module.Gallery("th")

	all := gallery.Filter("All")
	if !reflect.DeepEqual(all, gallery.Videos()) {
		t.Fatal("expected All to be the identity filter")
	}
	robotics := gallery.Filter("หุ่นยนต์")
	if len(robotics) != 1 || robotics[0].ID != "palletizer-cell" {
		t.Fatalf("expected the palletizer under the th robotics category, got %+v", robotics)
	}
	if got := gallery.Filter("Robotics"); len(got) != 0 {
		t.Fatalf("expected en category to miss under th, got %d", len(got))
	}

	if err := gallery.SelectCategory("หุ่นยนต์"); err != nil {
		t.Fatalf("select category: %v", err)
	}
	embed, err := gallery.Select("palletizer-cell")
	if err != nil {
		t.Fatalf("select video: %v", err)
	}
	if embed != "https://www.youtube.com/embed/aqz-KE-bpKQ" {
		t.Fatalf("unexpected embed url %q", embed)
	}
	if err := gallery.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if state := gallery.State(); state.Category != "หุ่นยนต์" || state.VideoID != "" {
		t.Fatalf("expected filter restored after close, got %+v", state)
	}
}

func TestBoardListsOpenPositions(t *testing.T) {
	module, _ := newModule(t)
	board := module.Board("en")

	titles := []string{}
	for _, position := range board.Positions() {
		titles = append(titles, position.Title)
	}
	want := []string{"PLC Engineer", "Mechanical Design Engineer", "CNC Operator"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
}

func TestResolverFallsBackToDefaultHome(t *testing.T) {
	module, _ := newModule(t)

	res := module.Resolver().ResolveOrFallback("/jp/careers")
	if res.Locale != "en" || res.Rest != "/" || !res.Fallback {
		t.Fatalf("expected default home fallback, got %+v", res)
	}
	res = module.Resolver().ResolveOrFallback("/th/careers")
	if res.Locale != "th" || res.Rest != "/careers" || res.Fallback {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestTranslateRendersKeyWhenMissing(t *testing.T) {
	module, _ := newModule(t)

	if got := module.Translate("th", "nav.careers"); got != "ร่วมงานกับเรา" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := module.Translate("th", "nav.unknown"); got != "nav.unknown" {
		t.Fatalf("expected the key back, got %q", got)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.I18N.Locales = []string{"en", "th", "EN"}

	if _, err := site.New(context.Background(), cfg); !errors.Is(err, site.ErrLocaleDuplicate) {
		t.Fatalf("expected ErrLocaleDuplicate, got %v", err)
	}
}
