package cnes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adcare/internal/model"
)

func writeExtract(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadWorkforceJoins(t *testing.T) {
	dir := t.TempDir()

	teamsPath := writeExtract(t, dir, "tbEquipe.csv", []byte(
		"CO_MUNICIPIO;CO_UNIDADE;TP_EQUIPE;CO_EQUIPE;SEQ_EQUIPE;DT_DESATIVACAO\n"+
			"355030;U1;22;E1;1;\n"+
			"355030;U1;46;E2;2;01/03/2020\n"+ // deactivated: dropped
			"310620;U9;22;E3;3;\n"+ // other region: dropped
			"355030;U2;30;E4;4;\n", // not a home-care type: dropped
	))
	linksPath := writeExtract(t, dir, "rlEstabEquipeProf.csv", []byte(
		"CO_UNIDADE;SEQ_EQUIPE;CO_PROFISSIONAL_SUS;CO_CBO;DT_DESLIGAMENTO\n"+
			"U1;1;P1;223505;\n"+
			"U1;1;P2;225125;\n"+
			"U1;1;P3;322205;15/02/2024\n"+ // terminated: dropped
			"U9;3;P4;223505;\n", // team filtered out above
	))
	// Latin-1 content with comma decimals; "Hospital S\xe3o Jos\xe9" exercises the decoder
	hoursPath := writeExtract(t, dir, "chs.csv", append(
		[]byte("CO_PROFISSIONAL_SUS;NO_FANTASIA;QT_CARGA_HORARIA_AMBULATORIAL;QT_CARGA_HOR_HOSP_SUS;QT_CARGA_HORARIA_OUTROS\n"),
		[]byte("P1;Hospital S\xe3o Jos\xe9;20,5;10;9,5\nP2;X;40;0;0\nP5;X;-4;0;0\n")...,
	))
	facilitiesPath := writeExtract(t, dir, "tbEstabelecimento.csv", []byte(
		"CO_UNIDADE;NO_FANTASIA;NU_LATITUDE;NU_LONGITUDE;CO_MUNICIPIO_GESTOR;CO_ESTADO_GESTOR\n"+
			"U1;Unidade Central;-23,55;-46,63;355030;35\n",
	))

	report := model.NewQualityReport()
	wf, err := LoadWorkforce(Config{
		TeamsPath:      teamsPath,
		LinksPath:      linksPath,
		HoursPath:      hoursPath,
		FacilitiesPath: facilitiesPath,
		Region:         "3550",
	}, zap.NewNop(), report)
	require.NoError(t, err)

	require.Len(t, wf.Metas, 1)
	meta := wf.Metas[0]
	assert.Equal(t, "U1/1", meta.ID)
	assert.Equal(t, model.TeamTypeEMADI, meta.TypeCode)
	require.NotNil(t, meta.Position)
	assert.InDelta(t, -23.55, meta.Position.Lat, 1e-9)

	require.Len(t, wf.Records, 2)
	byProf := map[string]model.ProfessionalRecord{}
	for _, rec := range wf.Records {
		byProf[rec.ProfessionalID] = rec
	}
	assert.InDelta(t, 20.5, byProf["P1"].OutpatientHours, 1e-9)
	assert.InDelta(t, 10.0, byProf["P1"].InpatientHours, 1e-9)
	assert.InDelta(t, 9.5, byProf["P1"].OtherHours, 1e-9)

	// negative-hours row was rejected at ingestion
	assert.Equal(t, 1, report.Counts[model.QualityNegativeHours])
	// two inactive rows (one team, one link)
	assert.Equal(t, 2, report.Counts[model.QualityInactiveDiscards])
}

func TestLoadWorkforceMissingExtract(t *testing.T) {
	report := model.NewQualityReport()
	_, err := LoadWorkforce(Config{TeamsPath: "/nonexistent/tbEquipe.csv"}, zap.NewNop(), report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tbEquipe.csv")
}

func TestLoadFacilitiesRejectsBadCoordinates(t *testing.T) {
	dir := t.TempDir()
	path := writeExtract(t, dir, "tbEstabelecimento.csv", []byte(
		"CO_UNIDADE;NU_LATITUDE;NU_LONGITUDE\n"+
			"A;0;0\n"+
			"B;-95,0;-46,6\n"+
			"C;-23,5;-46,6\n",
	))
	report := model.NewQualityReport()
	facilities, err := LoadFacilities(path, nil, report)
	require.NoError(t, err)
	assert.Len(t, facilities, 1)
	assert.Contains(t, facilities, "C")
	assert.Equal(t, 2, report.Counts[model.QualityBadCoordinate])
}

func TestLoadOccupationTitles(t *testing.T) {
	dir := t.TempDir()
	path := writeExtract(t, dir, "tbAtividadeProfissional.csv", append(
		[]byte("CO_CBO;DS_CBO\n"),
		[]byte("223505;ENFERMEIRO\n225125;M\xc9DICO CL\xcdNICO\n")...,
	))
	titles, err := LoadOccupationTitles(path)
	require.NoError(t, err)
	assert.Equal(t, "ENFERMEIRO", titles["223505"])
	assert.Equal(t, "MÉDICO CLÍNICO", titles["225125"])
}
