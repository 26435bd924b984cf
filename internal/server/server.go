// Package server exposes the pipeline as an HTTP upload endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-upmix/dsp/effects/reverb"
	"github.com/cwbudde/algo-upmix/dsp/filter/bank"
	"github.com/cwbudde/algo-upmix/dsp/layout"
	"github.com/cwbudde/algo-upmix/dsp/upmix"
	"github.com/cwbudde/algo-upmix/internal/tagger"
	"github.com/cwbudde/algo-upmix/internal/wavio"
	"github.com/cwbudde/algo-upmix/pipeline"
)

// Routes.
const (
	UploadPath  = "/upload-audio/"
	HealthPath  = "/healthz"
	FormatsPath = "/formats"
)

// multipartMemory is the in-memory part of a parsed upload.
const multipartMemory = 32 << 20

// Renderer runs the upmix pipeline. *pipeline.Pipeline implements it.
type Renderer interface {
	Run(stereo core.Buffer, formatName string) (pipeline.Output, error)
}

// Options configures a Server.
type Options struct {
	MaxUploadBytes int64
	Timeout        time.Duration // zero disables the deadline
	AllowOrigin    string
	DefaultFormat  string
	BitDepth       int
	TempDir        string
	Tagger         tagger.Tagger
	Logger         *logrus.Entry
}

// Server handles uploads.
type Server struct {
	render Renderer
	opts   Options
	log    *logrus.Entry
	mux    *http.ServeMux
}

// New returns a Server rendering through r.
func New(r Renderer, opts Options) *Server {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = layout.Format714.String()
	}

	if opts.BitDepth == 0 {
		opts.BitDepth = wavio.DefaultBitDepth
	}

	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 200 << 20
	}

	if opts.Tagger == nil {
		opts.Tagger = tagger.Nop{}
	}

	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{
		render: r,
		opts:   opts,
		log:    opts.Logger,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST "+UploadPath, s.handleUpload)
	s.mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	s.mux.HandleFunc("GET "+FormatsPath, s.handleFormats)
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.cors(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.WithFields(logrus.Fields{
			"function": "ListenAndServe",
			"addr":     addr,
		}).Info("Listening")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	return nil
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AllowOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", s.opts.AllowOrigin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "*")
			h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type formatInfo struct {
	Name     string   `json:"name"`
	Channels []string `json:"channels"`
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	named := layout.Named()
	out := make([]formatInfo, len(named))

	for i, f := range named {
		out[i] = formatInfo{Name: f.String(), Channels: f.Labels()}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// httpError carries the status reported to the client.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func fail(status int, err error) error {
	return &httpError{status: status, err: err}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	log := s.log.WithFields(logrus.Fields{
		"function":   "handleUpload",
		"request_id": id,
	})
	w.Header().Set("X-Request-ID", id)

	start := time.Now()

	err := s.upload(w, r, id, log)
	if err != nil {
		status := http.StatusInternalServerError

		var he *httpError
		if errors.As(err, &he) {
			status = he.status
		}

		log.WithError(err).WithField("status", status).Warn("Upload failed")
		http.Error(w, err.Error(), status)

		return
	}

	log.WithField("elapsed", time.Since(start).String()).Info("Upload rendered")
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, id string, log *logrus.Entry) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fail(http.StatusRequestEntityTooLarge, err)
		}

		return fail(http.StatusBadRequest, err)
	}

	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return fail(http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
	}
	defer file.Close()

	format := strings.TrimSpace(r.FormValue("output_format"))
	if format == "" {
		format = s.opts.DefaultFormat
	}

	work, err := os.MkdirTemp(s.opts.TempDir, "upmix-"+id+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	stereo, err := s.decodeUpload(file, filepath.Join(work, "input.wav"))
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"filename":    header.Filename,
		"format":      format,
		"sample_rate": stereo.SampleRate,
		"frames":      stereo.Len(),
	}).Info("Upload decoded")

	ctx := r.Context()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	out, err := s.run(ctx, stereo, format)
	if err != nil {
		return err
	}

	name := OutputName(header.Filename, out.Format)
	outPath := filepath.Join(work, name)

	if err := wavio.WriteFile(outPath, out.Buffer, s.opts.BitDepth); err != nil {
		return err
	}

	if err := s.opts.Tagger.Tag(ctx, outPath, out.Format); err != nil {
		return err
	}

	f, err := os.Open(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, time.Now(), f)

	return nil
}

// decodeUpload spools src to path and decodes it as stereo WAV.
func (s *Server) decodeUpload(src io.Reader, path string) (core.Buffer, error) {
	tmp, err := os.Create(path)
	if err != nil {
		return core.Buffer{}, err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return core.Buffer{}, err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return core.Buffer{}, err
	}

	stereo, _, err := wavio.DecodeStereo(tmp)
	if err != nil {
		return core.Buffer{}, fail(http.StatusBadRequest, err)
	}

	return stereo, nil
}

type runResult struct {
	out pipeline.Output
	err error
}

// run renders on a worker goroutine so the request deadline can abort the
// wait. The pipeline itself is not interruptible.
func (s *Server) run(ctx context.Context, stereo core.Buffer, format string) (pipeline.Output, error) {
	done := make(chan runResult, 1)

	go func() {
		out, err := s.render.Run(stereo, format)
		done <- runResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return pipeline.Output{}, classify(res.err)
		}

		return res.out, nil
	case <-ctx.Done():
		return pipeline.Output{}, fail(http.StatusGatewayTimeout, ctx.Err())
	}
}

// classify maps input errors to 422 and everything else to 500.
func classify(err error) error {
	switch {
	case errors.Is(err, upmix.ErrInvalidInputShape),
		errors.Is(err, upmix.ErrSampleRateMismatch),
		errors.Is(err, bank.ErrInvalidFilterParameter),
		errors.Is(err, reverb.ErrInvalidWetRatio),
		errors.Is(err, core.ErrRaggedChannels),
		errors.Is(err, core.ErrInvalidSampleRate):
		return fail(http.StatusUnprocessableEntity, err)
	default:
		return fail(http.StatusInternalServerError, err)
	}
}

// OutputName returns "<base>_<layout>.wav" for an uploaded file name.
func OutputName(upload string, f layout.Format) string {
	base := filepath.Base(strings.ReplaceAll(upload, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if base == "" || base == "." || base == "/" {
		base = "upmix"
	}

	return base + "_" + tagger.LayoutName(f) + ".wav"
}
