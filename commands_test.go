package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-cloud/internal/auth"
	pricing "tariff-cloud/internal/pricing/domain"
	"tariff-cloud/internal/pricing/infrastructure/xlsx"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TARIFF_CONFIG", "")
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCorrectionRows(t *testing.T) {
	rows, err := correctionRows([]string{"8:00=0.5", " 24:00 = 0.8 "})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "24:00", rows[1].End)
	assert.Equal(t, "0.8", rows[1].Price.Decimal.String())

	_, err = correctionRows([]string{"8:00"})
	assert.Error(t, err)
	_, err = correctionRows([]string{"8:00=abc"})
	assert.Error(t, err)
}

func TestTokenCommandIssuesParsableToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("TENANT_ID", "tenant-cli")

	out, err := runRoot(t, "token", "--role", "admin", "--subject", "ops")
	require.NoError(t, err)

	claims, err := auth.ParseJWT(strings.TrimSpace(out), []byte("cli-secret"))
	require.NoError(t, err)
	assert.Equal(t, "tenant-cli", claims.TenantID)
	assert.Equal(t, string(auth.RoleAdmin), claims.Role)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenCommandRejectsUnknownRole(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	_, err := runRoot(t, "token", "--role", "root")
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestTotalCommandWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	energy, err := xlsx.WriteStationTexts(xlsx.ColumnEnergy, []pricing.StationText{
		{Station: "A站", Text: "0:00 - 24:00 0.6元/度"},
	})
	require.NoError(t, err)
	service, err := xlsx.WriteStationTexts(xlsx.ColumnService, []pricing.StationText{
		{Station: "A站", Text: "0:00 - 24:00 0.4元/度"},
	})
	require.NoError(t, err)
	energyPath := writeFile(t, dir, "energy.xlsx", energy)
	servicePath := writeFile(t, dir, "service.xlsx", service)
	out := filepath.Join(dir, "total.xlsx")

	_, err = runRoot(t, "total", "--energy", energyPath, "--service", servicePath, "-o", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	totals, err := xlsx.ReadStationTexts(f, xlsx.ColumnTotal)
	require.NoError(t, err)
	assert.Equal(t, []pricing.StationText{{Station: "A站", Text: "0:00 - 24:00 1.0000元/度"}}, totals)
}

func TestCorrectCommandRewritesStation(t *testing.T) {
	dir := t.TempDir()
	service, err := xlsx.WriteStationTexts(xlsx.ColumnService, []pricing.StationText{
		{Station: "A站", Text: "0:00 - 24:00 0.4元/度"},
		{Station: "B站", Text: "0:00 - 24:00 0.5元/度"},
	})
	require.NoError(t, err)
	in := writeFile(t, dir, "service.xlsx", service)

	_, err = runRoot(t, "correct", "--in", in, "--station", "B站", "--set", "8:00=0.3", "--set", "24:00=0.6")
	require.NoError(t, err)

	f, err := os.Open(in)
	require.NoError(t, err)
	defer f.Close()
	texts, err := xlsx.ReadStationTexts(f, xlsx.ColumnService)
	require.NoError(t, err)
	require.Len(t, texts, 2)
	assert.Equal(t, "0:00 - 24:00 0.4元/度", texts[0].Text)
	assert.Contains(t, texts[1].Text, "0:00 - 8:00")
	assert.Contains(t, texts[1].Text, "8:00 - 24:00")
}

func TestCorrectCommandUnknownStation(t *testing.T) {
	dir := t.TempDir()
	service, err := xlsx.WriteStationTexts(xlsx.ColumnService, []pricing.StationText{{Station: "A站", Text: "x"}})
	require.NoError(t, err)
	in := writeFile(t, dir, "service.xlsx", service)

	_, err = runRoot(t, "correct", "--in", in, "--station", "Z站", "--set", "24:00=0.6")
	assert.Error(t, err)
}
