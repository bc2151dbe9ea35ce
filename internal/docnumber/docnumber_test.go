package docnumber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodScope(t *testing.T) {
	asOf := time.Date(2026, time.August, 29, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026", PeriodScope(TypeAsset, asOf))
	assert.Equal(t, "2026-0829", PeriodScope(TypeRequest, asOf))
	assert.Equal(t, "2026-08", PeriodScope(TypeLoan, asOf))
	assert.Equal(t, "2026-08", PeriodScope(TypeReturn, asOf))
	assert.Equal(t, "2026-08", PeriodScope(TypeHandover, asOf))
	assert.Equal(t, "2026-08", PeriodScope(TypeInstallation, asOf))
	assert.Equal(t, "2026-08", PeriodScope(TypeDismantle, asOf))
	assert.Equal(t, "2026-08", PeriodScope(TypeMaintenance, asOf))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "AST-2026-0001", Format(TypeAsset, "2026", 1))
	assert.Equal(t, "AST-2026-0002", Format(TypeAsset, "2026", 2))
	assert.Equal(t, "RO-2026-0829-0042", Format(TypeRequest, "2026-0829", 42))
	assert.Equal(t, "RL-2026-08-0317", Format(TypeLoan, "2026-08", 317))
}

// Sıra numarası sınırsızdır: 9999'dan sonra alan genişler, sarma olmaz
func TestFormatWidensPastMinimumWidth(t *testing.T) {
	assert.Equal(t, "AST-2026-9999", Format(TypeAsset, "2026", 9999))
	assert.Equal(t, "AST-2026-10000", Format(TypeAsset, "2026", 10000))
	assert.Equal(t, "RTN-2026-08-123456", Format(TypeReturn, "2026-08", 123456))
}

func TestParseSeq(t *testing.T) {
	seq, err := ParseSeq("AST-2026-0007")
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)

	seq, err = ParseSeq("RO-2026-0829-10000")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), seq)
}

func TestParseSeqInvalid(t *testing.T) {
	_, err := ParseSeq("bozuk")
	assert.Error(t, err)

	_, err = ParseSeq("AST-2026-")
	assert.Error(t, err)

	_, err = ParseSeq("AST-2026-abc")
	assert.Error(t, err)
}
