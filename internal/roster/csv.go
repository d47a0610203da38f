// Package roster reads and writes member state as flat CSV rows.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"CompSim/internal/model"
)

// ErrFormat marks a malformed roster file.
var ErrFormat = errors.New("malformed roster")

// Header lists the roster columns in file order.
var Header = []string{
	"name", "position_tier", "bank_count", "active", "sponsor",
	"subtree_size", "rank", "previous_rank",
	"paid_this_season", "bonus_this_season", "paid_lifetime", "bonus_lifetime",
	"binary_size_1", "binary_size_3", "binary_size_5", "binary_size_7",
	string(model.BonusRiseup), string(model.BonusProduct), string(model.BonusMatching),
	string(model.BonusCar), string(model.BonusHouse), string(model.BonusSharing),
}

func record(m *model.Member) []string {
	i := strconv.Itoa
	i64 := func(v int64) string { return strconv.FormatInt(v, 10) }
	return []string{
		m.Name, i(m.PositionTier), i(m.BankCount), strconv.FormatBool(m.Active), m.Sponsor,
		i(m.SubtreeSize), i(m.Rank), i(m.PreviousRank),
		i64(m.PaidThisSeason), i64(m.BonusThisSeason), i64(m.PaidLifetime), i64(m.BonusLifetime),
		i(m.BinarySize[0]), i(m.BinarySize[1]), i(m.BinarySize[2]), i(m.BinarySize[3]),
		i64(m.Bonuses.Riseup), i64(m.Bonuses.Product), i64(m.Bonuses.Matching),
		i64(m.Bonuses.Car), i64(m.Bonuses.House), i64(m.Bonuses.Sharing),
	}
}

// Save encodes members as CSV with a header row.
func Save(w io.Writer, members []*model.Member) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range members {
		if err := cw.Write(record(m)); err != nil {
			return fmt.Errorf("write member %q: %w", m.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load decodes a roster. Columns are matched by header name; the bonus
// breakdown columns are optional. Names and sponsors are kept verbatim.
// The first bad field aborts the read.
func Load(r io.Reader) ([]*model.Member, error) {
	cr := csv.NewReader(r)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrFormat, err)
	}
	col := make(map[string]int, len(head))
	for i, h := range head {
		col[strings.TrimSpace(h)] = i
	}
	for _, h := range Header[:16] {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrFormat, h)
		}
	}

	var members []*model.Member
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		p := &rowParser{rec: rec, col: col, line: line}
		m := p.member()
		if p.err != nil {
			return nil, p.err
		}
		members = append(members, m)
	}
	return members, nil
}

type rowParser struct {
	rec  []string
	col  map[string]int
	line int
	err  error
}

func (p *rowParser) field(name string) (string, bool) {
	i, ok := p.col[name]
	if !ok {
		return "", false
	}
	if i >= len(p.rec) {
		p.fail(name, "missing value")
		return "", false
	}
	return p.rec[i], true
}

func (p *rowParser) fail(name, msg string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: line %d column %q: %s", ErrFormat, p.line, name, msg)
	}
}

func (p *rowParser) str(name string) string {
	s, _ := p.field(name)
	return s
}

func (p *rowParser) num64(name string) int64 {
	s, ok := p.field(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		p.fail(name, fmt.Sprintf("not an integer: %q", s))
	}
	return v
}

func (p *rowParser) num(name string) int {
	return int(p.num64(name))
}

func (p *rowParser) flag(name string) bool {
	s, ok := p.field(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true
	case "false":
		return false
	}
	p.fail(name, fmt.Sprintf("not a boolean: %q", s))
	return false
}

func (p *rowParser) member() *model.Member {
	m := &model.Member{
		Name:            p.str("name"),
		PositionTier:    p.num("position_tier"),
		BankCount:       p.num("bank_count"),
		Active:          p.flag("active"),
		Sponsor:         p.str("sponsor"),
		SubtreeSize:     p.num("subtree_size"),
		Rank:            p.num("rank"),
		PreviousRank:    p.num("previous_rank"),
		PaidThisSeason:  p.num64("paid_this_season"),
		BonusThisSeason: p.num64("bonus_this_season"),
		PaidLifetime:    p.num64("paid_lifetime"),
		BonusLifetime:   p.num64("bonus_lifetime"),
		BinarySize: [model.LegPairs]int{
			p.num("binary_size_1"), p.num("binary_size_3"),
			p.num("binary_size_5"), p.num("binary_size_7"),
		},
		Bonuses: model.Breakdown{
			Riseup:   p.num64(string(model.BonusRiseup)),
			Product:  p.num64(string(model.BonusProduct)),
			Matching: p.num64(string(model.BonusMatching)),
			Car:      p.num64(string(model.BonusCar)),
			House:    p.num64(string(model.BonusHouse)),
			Sharing:  p.num64(string(model.BonusSharing)),
		},
	}
	if p.err != nil {
		return nil
	}
	switch {
	case m.Name == "":
		p.fail("name", "empty")
	case !model.ValidTier(m.PositionTier):
		p.fail("position_tier", fmt.Sprintf("tier %d not in %v", m.PositionTier, model.PositionTiers))
	case m.BankCount < 0 || m.BankCount > model.MaxBank:
		p.fail("bank_count", fmt.Sprintf("bank %d outside [0,%d]", m.BankCount, model.MaxBank))
	}
	return m
}

// LoadFile reads a roster from path.
func LoadFile(path string) ([]*model.Member, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	members, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return members, nil
}

// SaveFile writes a roster to path, replacing it atomically.
func SaveFile(path string, members []*model.Member) error {
	return writeAtomic(path, func(w io.Writer) error { return Save(w, members) })
}

// SaveTotals writes the season points summary.
func SaveTotals(w io.Writer, t model.Totals) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"metric", "current_season", "all_seasons"},
		{"total_paid", strconv.FormatInt(t.PaidThisSeason, 10), strconv.FormatInt(t.PaidLifetime, 10)},
		{"total_bonus", strconv.FormatInt(t.BonusThisSeason, 10), strconv.FormatInt(t.BonusLifetime, 10)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	return nil
}

// SaveTotalsFile writes the points summary to path.
func SaveTotalsFile(path string, t model.Totals) error {
	return writeAtomic(path, func(w io.Writer) error { return SaveTotals(w, t) })
}

func writeAtomic(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
