package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/devilmatch/internal/adapters/http/charts"
	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/pkg/logger"
	"github.com/spf13/cobra"
)

type smokeConfig struct {
	BaseURL string
	File    string
	Timeout time.Duration
}

type check struct {
	Name    string
	Elapsed time.Duration
	Detail  string
	Err     error
}

func newSmokeCommand() *cobra.Command {
	cfg := smokeConfig{}
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Smoke-test a running dashboard",
		Long: `Check a running dashboard end to end: metrics endpoint, optional
upload of --file, summary, every chart and the CSV export. Exits non-zero
when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return err
			}
			return runSmoke(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8501", "base URL of the dashboard")
	cmd.Flags().StringVar(&cfg.File, "file", "", "results file to upload before checking (.xlsx or .csv)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	return cmd
}

func runSmoke(ctx context.Context, w io.Writer, cfg smokeConfig) error {
	s := &smoker{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.Get().Named("smoke"),
	}
	s.log.Info(ctx, "starting smoke test", logger.String("url", s.base), logger.String("file", cfg.File))

	checks := []check{s.run(ctx, "healthz", s.health)}
	if cfg.File != "" {
		checks = append(checks, s.run(ctx, "upload", func(ctx context.Context) (string, error) {
			return s.upload(ctx, cfg.File)
		}))
	}
	var rows int
	checks = append(checks, s.run(ctx, "summary", func(ctx context.Context) (string, error) {
		var err error
		rows, err = s.summaryRows(ctx)
		return fmt.Sprintf("%d rows", rows), err
	}))
	for _, name := range charts.Names() {
		checks = append(checks, s.run(ctx, "chart "+name, func(ctx context.Context) (string, error) {
			return s.chart(ctx, name)
		}))
	}
	checks = append(checks, s.run(ctx, "export", func(ctx context.Context) (string, error) {
		return s.export(ctx, rows)
	}))

	failed := 0
	t := newTable(w)
	t.Header("CHECK", "RESULT", "TIME", "DETAIL")
	for _, c := range checks {
		result, detail := "ok", c.Detail
		if c.Err != nil {
			failed++
			result, detail = "FAIL", c.Err.Error()
		}
		_ = t.Append(c.Name, result, c.Elapsed.Round(time.Millisecond).String(), detail)
	}
	_ = t.Render()

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d checks", ErrSmoke, failed, len(checks))
	}
	s.log.Info(ctx, "smoke test passed", logger.Int("checks", len(checks)))
	return nil
}

type smoker struct {
	base   string
	client *http.Client
	log    logger.Logger
}

func (s *smoker) run(ctx context.Context, name string, fn func(context.Context) (string, error)) check {
	start := time.Now()
	detail, err := fn(ctx)
	c := check{Name: name, Elapsed: time.Since(start), Detail: detail, Err: err}
	if err != nil {
		s.log.Warn(ctx, "smoke check failed", logger.String("check", name), logger.Error(err))
	}
	return c
}

func (s *smoker) do(req *http.Request, want int) ([]byte, *http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != want {
		return body, resp, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, resp, nil
}

func (s *smoker) get(ctx context.Context, path string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, http.NoBody)
	if err != nil {
		return nil, nil, err
	}
	return s.do(req, http.StatusOK)
}

func (s *smoker) health(ctx context.Context) (string, error) {
	body, _, err := s.get(ctx, "/healthz")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d bytes of metrics", len(body)), nil
}

func (s *smoker) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, _, err := s.do(req, http.StatusCreated)
	if err != nil {
		return "", err
	}
	var ack struct {
		Rows int `json:"rows"`
		File struct {
			Name string `json:"name"`
		} `json:"file"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("decode ack: %w", err)
	}
	return fmt.Sprintf("stored %s (%d rows)", ack.File.Name, ack.Rows), nil
}

func (s *smoker) summaryRows(ctx context.Context) (int, error) {
	body, _, err := s.get(ctx, "/api/summary")
	if err != nil {
		return 0, err
	}
	var out struct {
		Summary struct {
			Rows int `json:"rows"`
		} `json:"summary"`
		Notice *struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notice"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode summary: %w", err)
	}
	if out.Notice != nil && out.Notice.Level == "error" {
		return out.Summary.Rows, fmt.Errorf("load notice: %s", out.Notice.Message)
	}
	return out.Summary.Rows, nil
}

func (s *smoker) chart(ctx context.Context, name string) (string, error) {
	body, resp, err := s.get(ctx, "/charts/"+name+".svg")
	if err != nil {
		return "", err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		return "", fmt.Errorf("content type %q", ct)
	}
	if !bytes.Contains(body, []byte("<svg")) {
		return "", fmt.Errorf("body is not SVG")
	}
	return strconv.Itoa(len(body)) + " bytes", nil
}

func (s *smoker) export(ctx context.Context, wantRows int) (string, error) {
	body, _, err := s.get(ctx, "/export.csv")
	if err != nil {
		return "", err
	}
	table, err := tabular.ReadCSV(bytes.NewReader(body))
	if err != nil {
		if wantRows == 0 {
			return "empty export", nil
		}
		return "", err
	}
	if len(table.Rows) != wantRows {
		return "", fmt.Errorf("export has %d rows, summary has %d", len(table.Rows), wantRows)
	}
	return fmt.Sprintf("%d rows", len(table.Rows)), nil
}
