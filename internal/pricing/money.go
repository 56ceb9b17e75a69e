package pricing

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLocale   = "id-ID"
	DefaultCurrency = "IDR"
	DefaultSymbol   = "Rp"
)

// FormatterConfig задаёт локаль и валюту для отображения сумм.
type FormatterConfig struct {
	Locale   string `yaml:"locale"`
	Currency string `yaml:"currency"`
	// Symbol печатается перед суммой, по умолчанию ISO-код валюты.
	Symbol string `yaml:"symbol"`
}

// DefaultFormatterConfig — рупии без дробной части в индонезийской локали.
func DefaultFormatterConfig() FormatterConfig {
	return FormatterConfig{
		Locale:   DefaultLocale,
		Currency: DefaultCurrency,
		Symbol:   DefaultSymbol,
	}
}

// Formatter печатает целые суммы как локализованный текст без дробной части.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// NewFormatter проверяет локаль и код валюты.
func NewFormatter(cfg FormatterConfig) (*Formatter, error) {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", cfg.Currency, err)
	}

	symbol := cfg.Symbol
	if symbol == "" {
		symbol = unit.String()
	}

	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		symbol:  symbol,
	}, nil
}

// MustFormatter паникует при некорректной конфигурации; для значений по умолчанию.
func MustFormatter(cfg FormatterConfig) *Formatter {
	f, err := NewFormatter(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Currency возвращает ISO-код валюты.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Format печатает сумму, например 15000 -> "Rp 15.000".
func (f *Formatter) Format(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + f.symbol + " " + f.printer.Sprintf("%d", amount)
}
