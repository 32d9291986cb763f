package platform

import (
	"errors"
	"testing"

	milouerrors "github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/executor"
)

// lookPathOnly builds a mock whose PATH contains exactly the given tools.
func lookPathOnly(tools ...string) *executor.MockExecutor {
	set := make(map[string]bool, len(tools))
	for _, tool := range tools {
		set[tool] = true
	}
	return &executor.MockExecutor{
		LookPathFunc: func(file string) (string, error) {
			if set[file] {
				return "/usr/bin/" + file, nil
			}
			return "", errors.New("not found")
		},
	}
}

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name    string
		tools   []string
		want    PackageManager
		wantErr bool
	}{
		{"debian", []string{"apt-get"}, Apt, false},
		{"fedora", []string{"dnf"}, Dnf, false},
		{"centos", []string{"yum"}, Yum, false},
		{"arch", []string{"pacman"}, Pacman, false},
		{"apt wins over dnf", []string{"dnf", "apt-get"}, Apt, false},
		{"nothing found", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := DetectPackageManager(lookPathOnly(tt.tools...))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected detection error")
				}
				if !milouerrors.Is(err, milouerrors.ErrUnsupportedPackageManager) {
					t.Errorf("expected PKG_MANAGER error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if pm != tt.want {
				t.Errorf("DetectPackageManager = %s, want %s", pm, tt.want)
			}
		})
	}
}

func TestInstallCommand(t *testing.T) {
	name, args := Apt.InstallCommand("certbot")
	if name != "apt-get" || args[0] != "install" || args[1] != "-y" || args[2] != "certbot" {
		t.Errorf("apt install command = %s %v", name, args)
	}

	name, args = Pacman.InstallCommand("certbot")
	if name != "pacman" || args[0] != "-S" || args[1] != "--noconfirm" {
		t.Errorf("pacman install command = %s %v", name, args)
	}
}

func TestInstall(t *testing.T) {
	t.Run("runs the install command", func(t *testing.T) {
		mock := lookPathOnly("apt-get")
		if err := Install(mock, "certbot"); err != nil {
			t.Fatal(err)
		}
		if !mock.CalledWith("apt-get", "certbot") {
			t.Errorf("install not invoked: %v", mock.Calls)
		}
	})

	t.Run("install failure surfaces output", func(t *testing.T) {
		mock := lookPathOnly("dnf")
		mock.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
			return []byte("No package certbot available"), errors.New("exit status 1")
		}
		err := Install(mock, "certbot")
		if err == nil {
			t.Fatal("expected install failure")
		}
	})
}
