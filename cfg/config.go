package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// KrogerSettings is the retailer block of the persisted configuration.
type KrogerSettings struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	StoreID      string
}

// GoogleSettings is the optional task-list block.
type GoogleSettings struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	TasksListID  string
}

// Settings is what the setup wizard persists. The wizard writes it once;
// only downstream commands read it back.
type Settings struct {
	Kroger KrogerSettings
	Google *GoogleSettings
}

type Config struct {
	AppEnv          string
	Kroger          KrogerSettings
	Google          *GoogleSettings
	RedisAddr       string
	CacheTTLMinutes int
}

// Load reads the env file written by `maiyer init` plus process env.
func Load() (*Config, error) {
	var errs []error

	// A missing env file is fine when the variables are exported directly;
	// mustEnv reports whatever is actually absent.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	kroger := KrogerSettings{
		ClientID:     mustEnv("KROGER_CLIENT_ID", &errs),
		ClientSecret: mustEnv("KROGER_CLIENT_SECRET", &errs),
		AccessToken:  mustEnv("KROGER_ACCESS_TOKEN", &errs),
		RefreshToken: mustEnv("KROGER_REFRESH_TOKEN", &errs),
		StoreID:      mustEnv("KROGER_STORE_ID", &errs),
	}

	var google *GoogleSettings
	if _, hasGoogle := os.LookupEnv("GOOGLE_CLIENT_ID"); hasGoogle {
		google = &GoogleSettings{
			ClientID:     mustEnv("GOOGLE_CLIENT_ID", &errs),
			ClientSecret: mustEnv("GOOGLE_CLIENT_SECRET", &errs),
			AccessToken:  mustEnv("GOOGLE_ACCESS_TOKEN", &errs),
			RefreshToken: mustEnv("GOOGLE_REFRESH_TOKEN", &errs),
			TasksListID:  mustEnv("GOOGLE_TASKS_LIST_ID", &errs),
		}
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	cacheTTLMinutes := 15
	if raw, ok := os.LookupEnv("CACHE_TTL_MINUTES"); ok {
		cacheTTLMinutes, err = strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, errors.New("conversion failed env: CACHE_TTL_MINUTES"))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:          appEnv,
		Kroger:          kroger,
		Google:          google,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CacheTTLMinutes: cacheTTLMinutes,
	}, nil
}

// Save writes the wizard's results as a flat key=value env file. Called
// exactly once at the end of setup.
func Save(path string, settings Settings) error {
	values := map[string]string{
		"KROGER_CLIENT_ID":     settings.Kroger.ClientID,
		"KROGER_CLIENT_SECRET": settings.Kroger.ClientSecret,
		"KROGER_ACCESS_TOKEN":  settings.Kroger.AccessToken,
		"KROGER_REFRESH_TOKEN": settings.Kroger.RefreshToken,
		"KROGER_STORE_ID":      settings.Kroger.StoreID,
	}
	if settings.Google != nil {
		values["GOOGLE_CLIENT_ID"] = settings.Google.ClientID
		values["GOOGLE_CLIENT_SECRET"] = settings.Google.ClientSecret
		values["GOOGLE_ACCESS_TOKEN"] = settings.Google.AccessToken
		values["GOOGLE_REFRESH_TOKEN"] = settings.Google.RefreshToken
		values["GOOGLE_TASKS_LIST_ID"] = settings.Google.TasksListID
	}
	return godotenv.Write(values, path)
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}
