package localdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	tests := []struct {
		kind     Kind
		sentinel error
	}{
		{KindOpen, ErrOpen},
		{KindConfiguration, ErrConfiguration},
		{KindWrite, ErrWrite},
		{KindRead, ErrRead},
		{KindDelete, ErrDelete},
	}
	all := []error{ErrOpen, ErrConfiguration, ErrWrite, ErrRead, ErrDelete}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("outer: %w", &Error{Kind: tt.kind, Op: "op", Err: errors.New("x")})
			for _, s := range all {
				assert.Equal(t, s == tt.sentinel, errors.Is(err, s), "sentinel %v", s)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindWrite, Op: "push", Collection: "tasks", Code: CodeConstraint, Err: errors.New("dup")}
	assert.Equal(t, `WriteError [ConstraintError]: push "tasks": dup`, err.Error())

	err = &Error{Kind: KindOpen, Op: "open", Code: CodeVersion, Err: errors.New("too old")}
	assert.Equal(t, `OpenError [VersionError]: open: too old`, err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
	assert.Equal(t, CodeData, CodeOf(fmt.Errorf("ctx: %w", &Error{Kind: KindRead, Code: CodeData})))
}

func TestWrap(t *testing.T) {
	t.Run("keeps existing error", func(t *testing.T) {
		inner := &Error{Kind: KindConfiguration, Op: "push", Code: CodeInvalidState, Err: ErrClosed}
		got := wrap(KindWrite, "push", "tasks", fmt.Errorf("ctx: %w", inner))
		assert.Same(t, inner, got)
	})

	t.Run("derives code", func(t *testing.T) {
		got := wrap(KindRead, "get", "tasks", codef(CodeNotFound, "missing"))
		assert.Equal(t, KindRead, got.Kind)
		assert.Equal(t, CodeNotFound, got.Code)
		assert.Equal(t, "tasks", got.Collection)
	})
}

func TestEngineCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", codef(CodeBlocked, "locked"), CodeBlocked},
		{"constraint", fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint}), CodeConstraint},
		{"full", sqlite3.Error{Code: sqlite3.ErrFull}, CodeQuotaExceeded},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, CodeBlocked},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, CodeBlocked},
		{"corrupt", sqlite3.Error{Code: sqlite3.ErrCorrupt}, CodeCorrupt},
		{"not a db", sqlite3.Error{Code: sqlite3.ErrNotADB}, CodeCorrupt},
		{"readonly", sqlite3.Error{Code: sqlite3.ErrReadonly}, CodeReadOnly},
		{"closed", fmt.Errorf("x: %w", ErrClosed), CodeInvalidState},
		{"other", errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engineCode(tt.err))
		})
	}
}
