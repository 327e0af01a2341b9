package scope

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/routepatch/pkg/text"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/divisions.ts")
	require.NoError(t, err)
	return string(data)
}

func apply(t *testing.T, stage Stage, src string) *text.ApplyResult {
	t.Helper()
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	rs, err := Build(DefaultNames(), stage)
	require.NoError(t, err)

	result, err := text.NewPatcher().Apply(ctx, src, rs)
	require.NoError(t, err)
	return result
}

func TestBuild_AllStageScopesFlatFile(t *testing.T) {
	result := apply(t, StageAll, loadFixture(t))

	for _, o := range result.Outcomes {
		assert.Equal(t, text.StatusMatched, o.Status, "rule %s", o.RuleID)
	}
	require.True(t, result.WasModified())

	out := result.Modified

	for _, path := range []string{
		"}>('/tournaments/:tournamentId/divisions', {",
		"}>('/tournaments/:tournamentId/divisions/:id', {",
		"}>('/tournaments/:tournamentId/divisions/:divisionId/generate-matches', {",
		"}>('/tournaments/:tournamentId/divisions/:divisionId/pools', {",
		"}>('/tournaments/:tournamentId/divisions/:divisionId/pools/bulk', {",
	} {
		assert.Contains(t, out, path)
	}
	assert.NotContains(t, out, "}>('/divisions")

	assert.Contains(t, out, " * Division CRUD endpoints, scoped to a tournament.\n")
	assert.Contains(t, out, " * - DELETE /tournaments/:tournamentId/divisions/:id\n")
	assert.Contains(t, out, "import { tournaments, divisions, teams, pools, matches, players, court_assignments } from '../lib/db/schema.js';")

	assert.Contains(t, out, "const tournamentParamsSchema = z.object({")
	assert.Contains(t, out, "const tournamentDivisionParamsSchema = z.object({")
	assert.Contains(t, out, "const divisionIdParamsSchema = z.object({")
	assert.NotContains(t, out, "const divisionParamsSchema")
	assert.NotContains(t, out, "divisionParamsSchema.safeParse")

	assert.Contains(t, out, "  async function validateTournament(tournamentId: number, reply: any) {")
	assert.Contains(t, out, "message: `Tournament with ID ${tournamentId} not found`,")
	assert.Contains(t, out, "if (division.tournament_id !== tournamentId) {")

	assert.Contains(t, out, "fastify.post<{\n    Params: z.infer<typeof tournamentParamsSchema>;\n    Body: z.infer<typeof createDivisionSchema>;\n  }>('/tournaments/:tournamentId/divisions', {")
	assert.Contains(t, out, "fastify.get<{\n    Params: z.infer<typeof tournamentDivisionParamsSchema>;\n  }>('/tournaments/:tournamentId/divisions/:id', {")
	assert.Contains(t, out, "fastify.put<{\n    Params: z.infer<typeof tournamentDivisionParamsSchema>;\n    Body: z.infer<typeof updateDivisionSchema>;\n  }>(")

	assert.Equal(t, 2, strings.Count(out, "const { tournamentId } = paramsResult.data;"))
	assert.Equal(t, 3, strings.Count(out, "const { tournamentId, id } = paramsResult.data;"))
	assert.Equal(t, 3, strings.Count(out, "const { tournamentId, divisionId } = paramsResult.data;"))
	assert.Equal(t, 2, strings.Count(out, "await validateTournament(tournamentId, reply);"))
	assert.Equal(t, 3, strings.Count(out, "await validateDivisionInTournament(tournamentId, id, reply);"))
	assert.Equal(t, 3, strings.Count(out, "await validateDivisionInTournament(tournamentId, divisionId, reply);"))

	assert.NotContains(t, out, "isNaN(")
	assert.NotContains(t, out, "Number(request.params.divisionId)")

	assert.Contains(t, out, ".values({ name, tournament_id: tournamentId })")
	assert.Equal(t, 2, strings.Count(out, ".where(eq(divisions.tournament_id, tournamentId))"))
	assert.Contains(t, out, ".from(divisions)\n        .where(eq(divisions.tournament_id, tournamentId))\n        .limit(limit)")
	assert.Contains(t, out, ".from(divisions)\n        .where(eq(divisions.tournament_id, tournamentId));")

	assert.Contains(t, out, "  }, async (request, reply) => {\n    // Validate params\n    const paramsResult = divisionIdParamsSchema.safeParse(request.params);")
	assert.Contains(t, out, "const { tournamentId, divisionId } = paramsResult.data;\n\n    // Validate body")
	assert.Contains(t, out, "    try {\n      // Validate division belongs to tournament\n      const validDivision = await validateDivisionInTournament(tournamentId, divisionId, reply);\n      if (!validDivision) return;\n\n      // Verify division exists")
}

func TestBuild_RerunIsNoop(t *testing.T) {
	once := apply(t, StageAll, loadFixture(t))
	twice := apply(t, StageAll, once.Modified)

	assert.False(t, twice.WasModified())
	assert.Empty(t, twice.Cascades())

	for _, o := range twice.Outcomes {
		if o.Kind == text.KindRemove || strings.HasSuffix(o.RuleID, "-drop-isnan") {
			assert.Equal(t, text.StatusUnmatched, o.Status, "rule %s", o.RuleID)
			continue
		}
		assert.Equal(t, text.StatusGuarded, o.Status, "rule %s", o.RuleID)
	}
}

func TestBuild_StagesComposeToAll(t *testing.T) {
	src := loadFixture(t)

	all := apply(t, StageAll, src)
	schemas := apply(t, StageSchemas, src)
	routes := apply(t, StageRoutes, schemas.Modified)

	assert.Equal(t, all.Modified, routes.Modified)
	assert.Empty(t, routes.Unmatched())

	probe, ok := routes.Outcome("params-schemas-present")
	require.True(t, ok)
	assert.Equal(t, text.StatusMatched, probe.Status)
	assert.Equal(t, all.ReplacementCount(), schemas.ReplacementCount()+routes.ReplacementCount())
}

func TestBuild_RoutesBeforeSchemasCascades(t *testing.T) {
	src := loadFixture(t)
	result := apply(t, StageRoutes, src)

	assert.False(t, result.WasModified(), "no route may be rewritten against missing schemas")

	probe, ok := result.Outcome("params-schemas-present")
	require.True(t, ok)
	assert.Equal(t, text.StatusUnmatched, probe.Status)

	cascades := result.Cascades()
	assert.Len(t, cascades, len(result.Outcomes)-1)

	helpers, ok := result.Outcome("helpers")
	require.True(t, ok)
	assert.Equal(t, []string{"params-schemas"}, helpers.Missing)

	check, ok := result.Outcome("get-check")
	require.True(t, ok)
	assert.Equal(t, []string{"params:get", "helpers"}, check.Missing)
}

func TestBuild_CustomNames(t *testing.T) {
	rs, err := Build(Names{
		Parent:     "league",
		Child:      "team",
		SideRoutes: []SideRoute{{Method: "put", Suffix: "roster"}},
	}, StageAll)
	require.NoError(t, err)

	assert.Equal(t, "scope-all", rs.Name)
	assert.Equal(t, "scope teams under leagues", rs.Description)

	_, ok := rs.Rule("roster-route")
	assert.True(t, ok)
	_, ok = rs.Rule("pools-route")
	assert.False(t, ok)

	r, ok := rs.Rule("params-schemas")
	require.True(t, ok)
	assert.Contains(t, r.Template, "const leagueTeamParamsSchema = z.object({")
	assert.Contains(t, r.Template, "  teamId: z.coerce.number().int().positive(),")

	r, ok = rs.Rule("roster-route")
	require.True(t, ok)
	assert.Contains(t, r.Template, "('/leagues/:leagueId/teams/:teamId/roster',")
	assert.NotContains(t, r.Pattern, "%")
}

func TestBuild_UnknownStage(t *testing.T) {
	_, err := Build(DefaultNames(), "everything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestPresets(t *testing.T) {
	names := []string{}
	for _, p := range Presets() {
		names = append(names, p.Name)

		rs, err := p.Build(DefaultNames())
		require.NoError(t, err, "preset %s", p.Name)
		assert.Equal(t, p.Name, rs.Name)
		assert.NotZero(t, rs.Len())
	}
	assert.Equal(t, []string{"scope", "scope-schemas", "scope-routes"}, names)

	p, err := Lookup("scope-routes")
	require.NoError(t, err)
	assert.Equal(t, StageRoutes, p.Stage)

	_, err = Lookup("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPreset)
}
