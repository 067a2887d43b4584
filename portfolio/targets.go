package portfolio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
)

// ParseTargets reads target instructions, one per line: a symbol and a
// dollar value separated by whitespace. The value is the last field, so
// share-class symbols written with a space ("BRK B 500") work. Blank lines
// and # comments are skipped. Values may be written US-style ("1,234.56")
// or European-style ("1.234,56").
func ParseTargets(r io.Reader) ([]Target, error) {
	var targets []Target
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) < 2 {
			return nil, fmt.Errorf("targets line %d: want SYMBOL VALUE, got %q", line, raw)
		}
		value, err := ParseMoney(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("targets line %d: %w", line, err)
		}
		if value < 0 {
			return nil, fmt.Errorf("targets line %d: negative value %q", line, fields[len(fields)-1])
		}
		sym := market.Normalize(strings.ToUpper(strings.Join(fields[:len(fields)-1], " ")))
		if seen[sym] {
			return nil, fmt.Errorf("targets line %d: duplicate symbol %s", line, sym)
		}
		seen[sym] = true
		targets = append(targets, Target{Symbol: sym, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, errors.New("no targets in file")
	}
	return targets, nil
}

// ParseDirectives reads flat-dollar trade instructions, one per line: a
// symbol, optionally followed by BUY or SELL (default BUY) and a dollar
// amount overriding defaultAmount. A field only counts as the action when
// it spells BUY or SELL, so share-class symbols written with a space
// ("BRK B") stay symbols. # comments and blanks are skipped.
func ParseDirectives(r io.Reader, defaultAmount float64) ([]Directive, error) {
	var dirs []Directive
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		fields := strings.Fields(strings.ToUpper(raw))

		action := broker.Buy
		actionAt := len(fields)
		for i, f := range fields {
			if f == string(broker.Buy) || f == string(broker.Sell) {
				action = broker.Action(f)
				actionAt = i
				break
			}
		}
		if actionAt == 0 {
			return nil, fmt.Errorf("directives line %d: missing symbol in %q", line, raw)
		}

		amount := defaultAmount
		if actionAt < len(fields) {
			switch rest := fields[actionAt+1:]; len(rest) {
			case 0:
			case 1:
				v, err := ParseMoney(rest[0])
				if err != nil {
					return nil, fmt.Errorf("directives line %d: %w", line, err)
				}
				amount = v
			default:
				return nil, fmt.Errorf("directives line %d: want SYMBOL [BUY|SELL] [AMOUNT], got %q", line, raw)
			}
		}
		if amount <= 0 {
			return nil, fmt.Errorf("directives line %d: amount must be positive, got %.2f", line, amount)
		}

		sym := market.Normalize(strings.Join(fields[:actionAt], " "))
		if seen[sym] {
			return nil, fmt.Errorf("directives line %d: duplicate symbol %s", line, sym)
		}
		seen[sym] = true
		dirs = append(dirs, Directive{Symbol: sym, Action: action, Amount: amount})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, errors.New("no instructions in file")
	}
	return dirs, nil
}

// ParseMoney parses a dollar amount in US ("1,234.56") or European
// ("1.234,56") notation. A lone comma with exactly two trailing digits is
// a decimal mark; otherwise commas group thousands. A lone dot is always
// a decimal point.
func ParseMoney(s string) (float64, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && len(s)-comma == 3 && strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("bad amount %q", orig)
	}
	return d.InexactFloat64(), nil
}

// FlatTargets assigns the same dollar target to every held symbol, the
// equal-weight maintenance mode.
func FlatTargets(current map[string]broker.Position, value float64) []Target {
	targets := make([]Target, 0, len(current))
	for sym := range current {
		targets = append(targets, Target{Symbol: sym, Value: value})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Symbol < targets[j].Symbol })
	return targets
}
