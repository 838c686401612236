package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")
		t.Setenv("COMPLETION_API_KEY", "sk-test")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_CompletionConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("COMPLETION_BASE_URL", "")
		t.Setenv("COMPLETION_MODEL", "")
		t.Setenv("COMPLETION_TIMEOUT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CompletionBaseURL != "https://api.openai.com/v1" {
			t.Fatalf("unexpected completion base url: %q", cfg.CompletionBaseURL)
		}
		if cfg.CompletionModel != "gpt-4o-mini" {
			t.Fatalf("unexpected completion model: %q", cfg.CompletionModel)
		}
		if cfg.CompletionTimeout != 60*time.Second {
			t.Fatalf("unexpected completion timeout: %s", cfg.CompletionTimeout)
		}
		if !cfg.CompletionCircuitEnabled {
			t.Fatalf("expected completion circuit enabled by default")
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Setenv("COMPLETION_TIMEOUT", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid COMPLETION_TIMEOUT")
		}
	})

	t.Run("prod requires api key", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("COMPLETION_API_KEY", "")
		t.Setenv("COMPLETION_TIMEOUT", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when APP_ENV=prod without COMPLETION_API_KEY")
		}
	})
}

func TestLoad_StatsConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("STATS_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StatsEnabled {
			t.Fatalf("expected StatsEnabled=false by default")
		}
		if cfg.StatsQuota != 100 {
			t.Fatalf("unexpected default stats quota: %d", cfg.StatsQuota)
		}
		if cfg.StatsQuotaWindow != 24*time.Hour {
			t.Fatalf("unexpected default stats quota window: %s", cfg.StatsQuotaWindow)
		}
		if cfg.StatsMinInterval != 2*time.Second {
			t.Fatalf("unexpected default stats min interval: %s", cfg.StatsMinInterval)
		}
	})

	t.Run("enabled requires token", func(t *testing.T) {
		t.Setenv("STATS_ENABLED", "true")
		t.Setenv("STATS_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STATS_ENABLED=true without STATS_TOKEN")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("STATS_ENABLED", "true")
		t.Setenv("STATS_TOKEN", "stats-token")
		t.Setenv("STATS_TIMEOUT", "10s")
		t.Setenv("STATS_MAX_RETRIES", "3")
		t.Setenv("STATS_DAILY_QUOTA", "250")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.StatsEnabled {
			t.Fatalf("expected StatsEnabled=true")
		}
		if cfg.StatsTimeout != 10*time.Second {
			t.Fatalf("unexpected stats timeout: %s", cfg.StatsTimeout)
		}
		if cfg.StatsMaxRetries != 3 {
			t.Fatalf("unexpected stats retries: %d", cfg.StatsMaxRetries)
		}
		if cfg.StatsQuota != 250 {
			t.Fatalf("unexpected stats quota: %d", cfg.StatsQuota)
		}
	})
}

func TestLoad_EnrichmentTTLDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ENRICHMENT_GROUNDED_TTL", "")
	t.Setenv("ENRICHMENT_LATENT_TTL", "")
	t.Setenv("ENRICHMENT_DEFAULT_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EnrichmentGroundedTTL != 6*time.Hour {
		t.Fatalf("unexpected grounded ttl: %s", cfg.EnrichmentGroundedTTL)
	}
	if cfg.EnrichmentLatentTTL != 24*time.Hour {
		t.Fatalf("unexpected latent ttl: %s", cfg.EnrichmentLatentTTL)
	}
	if cfg.EnrichmentDefaultTTL != time.Hour {
		t.Fatalf("unexpected default ttl: %s", cfg.EnrichmentDefaultTTL)
	}
	if cfg.EnrichmentWorkers != 4 {
		t.Fatalf("unexpected enrichment workers: %d", cfg.EnrichmentWorkers)
	}
}

func TestLoad_AnalysisCostValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default one", func(t *testing.T) {
		t.Setenv("ANALYSIS_COST", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AnalysisCost != 1 {
			t.Fatalf("unexpected default analysis cost: %d", cfg.AnalysisCost)
		}
	})

	t.Run("rejects zero", func(t *testing.T) {
		t.Setenv("ANALYSIS_COST", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for ANALYSIS_COST=0")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "betslip-analyzer-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "betslip-analyzer-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}
