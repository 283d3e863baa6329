package config

type CurrencyRate struct {
	CurrencyName string  `yaml:"name"`
	CurrencyRate float64 `yaml:"rate"`
}

func (c CurrencyRate) Name() string {
	return c.CurrencyName
}

func (c CurrencyRate) Rate() float64 {
	return c.CurrencyRate
}

type AppConfig struct {
	BaseCurrencyName string         `yaml:"base-currency"`
	CurrencyRates    []CurrencyRate `yaml:"currencies"`
	CategoryNames    []string       `yaml:"categories"`
	MetricsPortNum   int            `yaml:"metrics-port"`
}

func (s *AppConfig) BaseCurrency() string {
	return s.BaseCurrencyName
}

func (s *AppConfig) Currencies() []CurrencyRate {
	return s.CurrencyRates
}

func (s *AppConfig) Categories() []string {
	return s.CategoryNames
}

func (s *AppConfig) MetricsPort() int {
	return s.MetricsPortNum
}
