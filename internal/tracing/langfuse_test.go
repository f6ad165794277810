package tracing

import "testing"

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LANGFUSE_HOST", "")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf-test")
	t.Setenv("LANGFUSE_SECRET_KEY", "")

	cfg := ConfigFromEnv()
	if cfg.Host != defaultHost {
		t.Errorf("Host: got %q, want %q", cfg.Host, defaultHost)
	}
	if cfg.Enabled() {
		t.Error("tracing must stay disabled without a secret key")
	}
}

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no keys", Config{}},
		{"public key only", Config{PublicKey: "pk"}},
		{"secret key only", Config{SecretKey: "sk"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			handler, flush, ok := Setup(tc.cfg)
			if ok || handler != nil || flush != nil {
				t.Errorf("expected tracing disabled, got ok=%v", ok)
			}
		})
	}
}

func TestInstall_DisabledReturnsNoop(t *testing.T) {
	t.Parallel()

	flush, ok := Install(Config{})
	if ok {
		t.Fatal("expected ok=false")
	}
	flush() // must not panic
}
