package control

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
)

// render is a helper that runs Generate with a default-sized buffer.
func render(t *testing.T, st *domain.State, path, query string) string {
	t.Helper()

	var q []byte
	if query != "" {
		q = []byte(query)
	}

	dst := NewBuffer(256)

	n, err := Generate(context.Background(), dst, []byte(path), q, st, time.Unix(1, 0))
	require.NoError(t, err)
	require.Equal(t, n, dst.Len())

	return string(dst.Bytes())
}

// TestGenerate_OtherPathsHaveNoContent checks that only the exact control path renders.
func TestGenerate_OtherPathsHaveNoContent(t *testing.T) {
	t.Parallel()

	for _, active := range []bool{false, true} {
		st := domain.NewState("192.168.4.1", time.Unix(0, 0))
		st.Active = active

		for _, path := range []string{"/", "/alarm/", "/alarms", "/ALARM", "", "/favicon.ico"} {
			require.Empty(t, render(t, st, path, "alarm=1"), path)
			require.Equal(t, active, st.Active, "other paths must not toggle")
		}
	}
}

// TestGenerate_ToggleThenRender verifies the page reflects the state after the toggle.
func TestGenerate_ToggleThenRender(t *testing.T) {
	t.Parallel()

	st := domain.NewState("192.168.4.1", time.Unix(0, 0))

	on := render(t, st, ControlPath, "alarm=1")
	require.True(t, st.Active)
	require.Contains(t, on, "<p>ATIVADO</p>")
	require.Contains(t, on, `href="?alarm=0"`)
	require.Contains(t, on, ">Desligar</a>")
	require.NotContains(t, on, "Ligar</a>")

	off := render(t, st, ControlPath, "alarm=0")
	require.False(t, st.Active)
	require.Contains(t, off, "<p>DESATIVADO</p>")
	require.Contains(t, off, `href="?alarm=1"`)
	require.Contains(t, off, ">Ligar</a>")
}

// TestGenerate_Idempotent ensures repeating a toggle yields identical pages.
func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	st := domain.NewState("192.168.4.1", time.Unix(0, 0))

	first := render(t, st, ControlPath, "alarm=1")
	second := render(t, st, ControlPath, "alarm=1")

	require.True(t, st.Active)
	require.Equal(t, first, second)
}

// TestGenerate_StatusAndButtonAreOpposites checks the page always proposes the inverse action.
func TestGenerate_StatusAndButtonAreOpposites(t *testing.T) {
	t.Parallel()

	st := domain.NewState("192.168.4.1", time.Unix(0, 0))

	for _, query := range []string{"alarm=1", "alarm=0", "alarm=7", "alarm=-0", "alarm=x", "foo=1", ""} {
		page := render(t, st, ControlPath, query)

		if st.Active {
			require.True(t, strings.Contains(page, "ATIVADO") && !strings.Contains(page, "DESATIVADO"), query)
			require.Contains(t, page, `href="?alarm=0"`, query)
		} else {
			require.Contains(t, page, "DESATIVADO", query)
			require.Contains(t, page, `href="?alarm=1"`, query)
		}
	}
}

// TestParseToggle covers the accepted toggle formats.
func TestParseToggle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query  string
		active bool
		ok     bool
	}{
		{query: "alarm=1", active: true, ok: true},
		{query: "alarm=0", active: false, ok: true},
		{query: "alarm=00", active: false, ok: true},
		{query: "alarm=2", active: true, ok: true},
		{query: "alarm=1&x=y", active: true, ok: true},
		{query: "alarm=+0", active: false, ok: true},
		{query: "alarm=", ok: false},
		{query: "alarm=on", ok: false},
		{query: "x=1", ok: false},
		{query: "", ok: false},
	}

	for _, tc := range cases {
		active, ok := parseToggle([]byte(tc.query))
		require.Equal(t, tc.ok, ok, tc.query)

		if tc.ok {
			require.Equal(t, tc.active, active, tc.query)
		}
	}
}

// TestGenerate_CapacityError verifies an undersized body buffer reports the required length.
func TestGenerate_CapacityError(t *testing.T) {
	t.Parallel()

	st := domain.NewState("192.168.4.1", time.Unix(0, 0))
	dst := NewBuffer(64)

	n, err := Generate(context.Background(), dst, []byte(ControlPath), nil, st, time.Unix(1, 0))
	require.ErrorIs(t, err, ErrCapacity)
	require.Zero(t, n)
	require.Zero(t, dst.Len())
}
