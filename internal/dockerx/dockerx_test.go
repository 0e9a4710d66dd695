package dockerx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecArgs(t *testing.T) {
	tests := []struct {
		name    string
		opts    ExecOptions
		command []string
		want    []string
	}{
		{
			name:    "plain",
			command: []string{"ls", "/"},
			want:    []string{"exec", "acme_odoo", "ls", "/"},
		},
		{
			name:    "interactive shell",
			opts:    ExecOptions{Interactive: true},
			command: []string{"bash"},
			want:    []string{"exec", "-it", "acme_odoo", "bash"},
		},
		{
			name:    "user and env",
			opts:    ExecOptions{User: "odoo", Env: []string{"PGPASSWORD=secret"}},
			command: []string{"psql", "-U", "odoo"},
			want:    []string{"exec", "-u", "odoo", "-e", "PGPASSWORD=secret", "acme_odoo", "psql", "-U", "odoo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, execArgs("acme_odoo", tt.opts, tt.command))
		})
	}
}

func TestTarCreateArgs(t *testing.T) {
	got := tarCreateArgs("acme_odoo", "/usr/lib/python3/dist-packages/odoo", []string{"*.pyc", "static/fonts"})
	want := []string{
		"exec", "acme_odoo", "tar", "-C", "/usr/lib/python3/dist-packages/odoo",
		"--exclude=*.pyc", "--exclude=static/fonts",
		"-cf", "-", ".",
	}
	assert.Equal(t, want, got)
}

func TestTarCreateArgsNoExcludes(t *testing.T) {
	got := tarCreateArgs("c", "/src", nil)
	assert.Equal(t, []string{"exec", "c", "tar", "-C", "/src", "-cf", "-", "."}, got)
}
