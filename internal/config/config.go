package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App        App        `mapstructure:",squash"`
	Server     Server     `mapstructure:",squash"`
	Data       Data       `mapstructure:",squash"`
	Import     Import     `mapstructure:",squash"`
	ImportSync ImportSync `mapstructure:",squash"`
	SecretKey  string     `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Data agrupa os caminhos dos arquivos de dados. MetricsCSV é o CSV "oficial"
// usado no bootstrap automático quando o banco está vazio; UsersCSV é a fonte
// de usuários para autenticação.
type Data struct {
	Dir          string `mapstructure:"data_dir"`
	DatabasePath string `mapstructure:"database_path"`
	MetricsCSV   string `mapstructure:"metrics_csv"`
	UsersCSV     string `mapstructure:"users_csv"`
}

// Import controla o tamanho do lote de LEITURA do CSV. O tamanho dos lotes de
// escrita é derivado do limite de parâmetros do SQLite, não é configurável.
type Import struct {
	ReadBatchSize int `mapstructure:"import_read_batch_size"`
}

// ImportSync configura a reimportação agendada do CSV oficial.
type ImportSync struct {
	CronSchedule string `mapstructure:"import_sync_cron"`
	Enabled      bool   `mapstructure:"import_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("DATABASE_PATH", "./data/metrics.db")
	viper.SetDefault("METRICS_CSV", "./data/metrics.csv")
	viper.SetDefault("USERS_CSV", "./data/users.csv")

	viper.SetDefault("IMPORT_READ_BATCH_SIZE", 200_000)

	viper.SetDefault("IMPORT_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("IMPORT_SYNC_ENABLED", false)

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	return config, nil
}

// loadEnvFile tenta carregar o .env das localizações usuais (diretório atual e
// diretórios acima). A ausência do arquivo não é um erro.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de:", location)
			return
		}
	}
}
