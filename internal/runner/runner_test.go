package runner_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codeinsights/internal/bitbucket"
	"github.com/dshills/codeinsights/internal/insights"
	"github.com/dshills/codeinsights/internal/runner"
	"github.com/dshills/codeinsights/mocks/transportmock"
)

const commit = "abc123"

var target = bitbucket.Target{Owner: "acme", Slug: "web", Commit: commit}

// writeReport writes an ESLint report with n warnings in one file.
func writeReport(t *testing.T, n int) string {
	t.Helper()
	var msgs []string
	for i := 0; i < n; i++ {
		msgs = append(msgs, fmt.Sprintf(`{"ruleId":"no-console","severity":1,"message":"m%d","line":%d,"column":1}`, i, i+1))
	}
	report := fmt.Sprintf(`[{"filePath":"/work/src/a.js","messages":[%s],"errorCount":0,"warningCount":%d,"fixableErrorCount":0,"fixableWarningCount":0}]`,
		strings.Join(msgs, ","), n)
	path := filepath.Join(t.TempDir(), "eslint.json")
	require.NoError(t, os.WriteFile(path, []byte(report), 0o644))
	return path
}

func ok(_ context.Context, _ string, body any) (*bitbucket.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &bitbucket.Response{StatusCode: http.StatusOK, Body: data}, nil
}

func setup(t *testing.T, policy bitbucket.FailurePolicy) (*transportmock.MockTransport, *bitbucket.Client) {
	t.Helper()
	transport := transportmock.NewMockTransport(gomock.NewController(t))
	client := bitbucket.NewClient(transport,
		bitbucket.WithBaseURL("https://bb.test"),
		bitbucket.WithFailurePolicy(policy))
	return transport, client
}

func TestRun_SubmitsReportThenAnnotations(t *testing.T) {
	transport, client := setup(t, bitbucket.FailFast)
	key := insights.ReportKey("test", commit)

	gomock.InOrder(
		transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, url string, body any) (*bitbucket.Response, error) {
				assert.True(t, strings.HasSuffix(url, "/reports/"+key))
				report := body.(insights.ReportSummary)
				assert.Equal(t, insights.ResultFailed, report.Result)
				assert.Equal(t, "https://bitbucket.org/acme/web/addon/pipelines/home#!/results/17", report.Link)
				return &bitbucket.Response{StatusCode: http.StatusCreated}, nil
			}),
		transport.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Times(3).DoAndReturn(ok),
	)

	logger := zerolog.Nop()
	r := runner.New(runner.Options{
		Patterns:    []string{writeReport(t, 250)},
		BaseDir:     "/work",
		Target:      target,
		BuildNumber: "17",
	}, client, &logger)

	out, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, runner.StateDone, out.State)
	assert.Equal(t, key, out.ReportKey)
	assert.Len(t, out.Annotations.Annotations, 250)
	assert.Equal(t, "src/a.js", out.Annotations.Annotations[0].Path)
	assert.Equal(t, 3, out.Submission.Succeeded)
}

func TestRun_NoAnnotationsWhenReportFails(t *testing.T) {
	transport, client := setup(t, bitbucket.FailFast)
	transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusForbidden}, nil)
	transport.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	logger := zerolog.Nop()
	out, err := runner.New(runner.Options{Patterns: []string{writeReport(t, 5)}, Target: target}, client, &logger).
		Run(context.Background())

	var statusErr *bitbucket.APIStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, runner.StateReportFailed, out.State)
}

func TestRun_FailOpenReportFailureSucceeds(t *testing.T) {
	transport, client := setup(t, bitbucket.FailOpen)
	transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusInternalServerError}, nil)
	transport.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	logger := zerolog.Nop()
	out, err := runner.New(runner.Options{Patterns: []string{writeReport(t, 5)}, Target: target}, client, &logger).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, runner.StateReportFailed, out.State)
	assert.Error(t, out.ReportErr)
}

func TestRun_FailFastAnnotationFailure(t *testing.T) {
	transport, client := setup(t, bitbucket.FailFast)
	transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusOK}, nil)
	transport.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusBadRequest}, nil)

	logger := zerolog.Nop()
	out, err := runner.New(runner.Options{Patterns: []string{writeReport(t, 150)}, Target: target}, client, &logger).
		Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, runner.StateAnnotationsSubmitting, out.State)
	assert.Equal(t, 1, out.Submission.Attempted)
}

func TestRun_CleanReportSkipsAnnotations(t *testing.T) {
	transport, client := setup(t, bitbucket.FailFast)
	transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusOK}, nil)
	transport.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	logger := zerolog.Nop()
	out, err := runner.New(runner.Options{Patterns: []string{writeReport(t, 0)}, Target: target}, client, &logger).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, insights.ResultPassed, out.Report.Result)
	assert.Equal(t, runner.StateDone, out.State)
}

func TestRun_Verify(t *testing.T) {
	transport, client := setup(t, bitbucket.FailFast)
	transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusOK}, nil)
	transport.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(&bitbucket.Response{StatusCode: http.StatusOK, Body: []byte(`{"result":"PASSED"}`)}, nil)

	logger := zerolog.Nop()
	out, err := runner.New(runner.Options{
		Patterns: []string{writeReport(t, 0)},
		Target:   target,
		Verify:   true,
	}, client, &logger).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, runner.StateDone, out.State)
}

func TestRun_VerifyFailure(t *testing.T) {
	tests := []struct {
		name    string
		policy  bitbucket.FailurePolicy
		wantErr bool
	}{
		{"fail-fast returns error", bitbucket.FailFast, true},
		{"fail-open logs and finishes", bitbucket.FailOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, client := setup(t, tt.policy)
			transport.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&bitbucket.Response{StatusCode: http.StatusOK}, nil)
			transport.EXPECT().Get(gomock.Any(), gomock.Any()).
				Return(&bitbucket.Response{StatusCode: http.StatusNotFound}, nil)

			logger := zerolog.Nop()
			out, err := runner.New(runner.Options{
				Patterns: []string{writeReport(t, 0)},
				Target:   target,
				Verify:   true,
			}, client, &logger).Run(context.Background())

			if tt.wantErr {
				var statusErr *bitbucket.APIStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, runner.StateDone, out.State)
		})
	}
}

func TestRun_IncompleteTarget(t *testing.T) {
	_, client := setup(t, bitbucket.FailFast)
	logger := zerolog.Nop()

	_, err := runner.New(runner.Options{Patterns: []string{writeReport(t, 1)}}, client, &logger).
		Run(context.Background())

	assert.ErrorIs(t, err, bitbucket.ErrIncompleteTarget)
}

func TestBuild_SortedCapsAnnotations(t *testing.T) {
	logger := zerolog.Nop()
	r := runner.New(runner.Options{
		Patterns: []string{writeReport(t, 1005)},
		Target:   target,
		Mapper:   insights.Mapper{Sorted: true},
	}, nil, &logger)

	out, err := r.Build()

	require.NoError(t, err)
	assert.Len(t, out.Annotations.Annotations, insights.MaxAnnotations)
	assert.Equal(t, 5, out.Annotations.Dropped)
	assert.Equal(t, "0:no-console", out.Annotations.Annotations[0].ExternalID)
	assert.Equal(t, insights.AnnotationVulnerability, out.Annotations.Annotations[0].AnnotationType)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "report-failed", runner.StateReportFailed.String())
	assert.Equal(t, "State(42)", runner.State(42).String())
}
