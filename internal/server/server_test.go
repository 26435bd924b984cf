package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-upmix/dsp/layout"
	"github.com/cwbudde/algo-upmix/dsp/upmix"
	"github.com/cwbudde/algo-upmix/internal/testutil"
	"github.com/cwbudde/algo-upmix/internal/wavio"
	"github.com/cwbudde/algo-upmix/pipeline"
)

func quietEntry() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func realPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	irs := impulse.Pair{
		Left:  impulse.Response{Samples: testutil.DecayingNoise(1, 128, 48000, 0.002), SampleRate: 48000},
		Right: impulse.Response{Samples: testutil.DecayingNoise(2, 128, 48000, 0.002), SampleRate: 48000},
	}
	p, err := pipeline.New(pipeline.Config{IRs: irs}, pipeline.WithLogger(quietEntry()))
	require.NoError(t, err)
	return p
}

func wavBytes(t *testing.T, buf core.Buffer) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, wavio.WriteFile(path, buf, 16))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func stereoWAV(t *testing.T) []byte {
	s := testutil.DeterministicSine(440, 48000, 0.5, 4800)
	return wavBytes(t, core.Buffer{Channels: [][]float64{s, s}, SampleRate: 48000})
}

func uploadRequest(t *testing.T, filename string, data []byte, format string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	if format != "" {
		require.NoError(t, mw.WriteField("output_format", format))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, UploadPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (core.Buffer, wavio.Info) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, os.WriteFile(path, rec.Body.Bytes(), 0o644))
	buf, info, err := wavio.ReadFile(path)
	require.NoError(t, err)
	return buf, info
}

type recordingTagger struct {
	formats []layout.Format
	err     error
}

func (r *recordingTagger) Tag(_ context.Context, path string, f layout.Format) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	r.formats = append(r.formats, f)
	return r.err
}

func TestUploadRendersFormat(t *testing.T) {
	tg := &recordingTagger{}
	srv := New(realPipeline(t), Options{Tagger: tg, Logger: quietEntry(), AllowOrigin: "*"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "song.wav", stereoWAV(t), "5.1"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="song_5.1.wav"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	buf, info := decodeResponse(t, rec)
	assert.Equal(t, 6, info.Channels)
	assert.Equal(t, 24, info.BitDepth)
	assert.Equal(t, 4800, buf.Len())
	assert.LessOrEqual(t, buf.Peak(), 0.891+1e-3)
	assert.Equal(t, []layout.Format{layout.Format51}, tg.formats)
}

func TestUploadDefaultFormat(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "mix.wav", stereoWAV(t), ""))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="mix_7.1.4.wav"`, rec.Header().Get("Content-Disposition"))
	_, info := decodeResponse(t, rec)
	assert.Equal(t, 12, info.Channels)
}

func TestUploadBadRequests(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry()})
	mono := wavBytes(t, core.Buffer{Channels: [][]float64{make([]float64, 480)}, SampleRate: 48000})

	tests := map[string]*http.Request{
		"missing file": uploadRequest(t, "", nil, "5.1"),
		"mono":         uploadRequest(t, "mono.wav", mono, "5.1"),
		"garbage":      uploadRequest(t, "x.wav", []byte("definitely not riff"), "5.1"),
		"not multipart": httptest.NewRequest(http.MethodPost, UploadPath,
			bytes.NewReader([]byte("raw"))),
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry(), MaxUploadBytes: 1024})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "big.wav", stereoWAV(t), "5.1"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type renderFunc func(core.Buffer, string) (pipeline.Output, error)

func (f renderFunc) Run(b core.Buffer, name string) (pipeline.Output, error) { return f(b, name) }

func TestUploadRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"shape", upmix.ErrInvalidInputShape, http.StatusUnprocessableEntity},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := renderFunc(func(core.Buffer, string) (pipeline.Output, error) {
				return pipeline.Output{}, tc.err
			})
			srv := New(r, Options{Logger: quietEntry()})

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, uploadRequest(t, "a.wav", stereoWAV(t), "7.1"))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestUploadDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := renderFunc(func(core.Buffer, string) (pipeline.Output, error) {
		<-release
		return pipeline.Output{}, nil
	})
	srv := New(r, Options{Logger: quietEntry(), Timeout: 20 * time.Millisecond})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "a.wav", stereoWAV(t), "7.1"))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestTaggerFailure(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry(), Tagger: &recordingTagger{err: errors.New("ffmpeg missing")}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "a.wav", stereoWAV(t), "7.1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndFormats(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, FormatsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var formats []formatInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&formats))
	require.Len(t, formats, 5)
	assert.Equal(t, "5.1", formats[0].Name)
	assert.Len(t, formats[4].Channels, 12)
}

func TestPreflight(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry(), AllowOrigin: "*"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, UploadPath, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "song_7.1.wav", OutputName("song.wav", layout.Format71))
	assert.Equal(t, "song_7.1.4.wav", OutputName(`C:\music\song.flac`, layout.FormatFull))
	assert.Equal(t, "upmix_5.1.wav", OutputName("", layout.Format51))
}

func TestListenAndServeStops(t *testing.T) {
	srv := New(realPipeline(t), Options{Logger: quietEntry()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
