package headless

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/linkcheck"
)

type fakeSession struct {
	result NavResult
	err    error
	calls  int
	closed bool
}

func (s *fakeSession) Navigate(_ context.Context, _ string) (NavResult, error) {
	s.calls++
	if s.err != nil {
		return NavResult{}, s.err
	}
	return s.result, nil
}

func (s *fakeSession) Close() {
	s.closed = true
}

func TestClassifyHeadless(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		url    string
		result NavResult
		err    error
		want   linkcheck.Status
	}{
		{
			name:   "available on 200 at same URL",
			url:    "https://example.com/page",
			result: NavResult{FinalURL: "https://example.com/page", StatusCode: 200},
			want:   linkcheck.StatusAvailable,
		},
		{
			name:   "available within 3xx success range",
			url:    "https://example.com/page",
			result: NavResult{FinalURL: "https://example.com/page", StatusCode: 304},
			want:   linkcheck.StatusAvailable,
		},
		{
			name:   "trailing slash difference is not a redirect",
			url:    "https://example.com/page",
			result: NavResult{FinalURL: "https://example.com/page/", StatusCode: 200},
			want:   linkcheck.StatusAvailable,
		},
		{
			name:   "redirect to different URL",
			url:    "https://example.com/old",
			result: NavResult{FinalURL: "https://example.com/new", StatusCode: 200},
			want:   linkcheck.StatusRedirect,
		},
		{
			name:   "dead on 404",
			url:    "https://example.com/gone",
			result: NavResult{FinalURL: "https://example.com/gone", StatusCode: 404},
			want:   linkcheck.StatusDead,
		},
		{
			name:   "error on 500",
			url:    "https://example.com/broken",
			result: NavResult{FinalURL: "https://example.com/broken", StatusCode: 500},
			want:   linkcheck.StatusError,
		},
		{
			name: "dead on navigation error mentioning 404",
			url:  "https://example.com/gone",
			err:  errors.New("page load error net::ERR_HTTP_RESPONSE_CODE_FAILURE 404"),
			want: linkcheck.StatusDead,
		},
		{
			name: "error on other navigation error",
			url:  "https://example.com/slow",
			err:  errors.New("context deadline exceeded"),
			want: linkcheck.StatusError,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			session := &fakeSession{result: tc.result, err: tc.err}
			p := New(session, zap.NewNop())
			require.Equal(t, tc.want, p.Classify(context.Background(), tc.url))
			require.Equal(t, 1, session.calls)
		})
	}
}

func TestClassifyHeadlessEmptyURLSkipsNavigation(t *testing.T) {
	t.Parallel()

	session := &fakeSession{result: NavResult{StatusCode: 200}}
	p := New(session, zap.NewNop())

	require.Equal(t, linkcheck.StatusError, p.Classify(context.Background(), ""))
	require.Zero(t, session.calls)
}
