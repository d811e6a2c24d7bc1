package spec

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/kc2openapi/internal/route"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *goquery.Document {
	t.Helper()
	raw, err := os.ReadFile("testdata/admin-api.html")
	require.NoError(t, err)
	doc, err := ParseHTML(raw)
	require.NoError(t, err)
	return doc
}

func buildFixture(t *testing.T, opts ...BuildOption) *openapi3.T {
	t.Helper()
	out, err := Build(context.Background(), loadFixture(t), opts...)
	require.NoError(t, err)
	return out
}

// page wraps operation sections in the minimal surrounding markup Build needs.
func page(sections string) *goquery.Document {
	html := `<html><body><h1>Test API</h1>
<h2 id="_overview">Overview</h2><div class="sectionbody"><div class="paragraph"><p>Test</p></div>
<h3 id="_version_information">Version information</h3><div class="paragraph"><p>Version: 1</p></div></div>
<h2 id="_paths">Resources</h2><div class="sectionbody"><div class="sect2"><h3>Test</h3>` + sections + `</div></div>
</body></html>`
	doc, err := ParseHTML([]byte(html))
	if err != nil {
		panic(err)
	}
	return doc
}

func operationIDs(doc *openapi3.T) map[string]string {
	ids := map[string]string{}
	for path, item := range doc.Paths {
		for method, op := range item.Operations() {
			ids[method+" "+path] = op.OperationID
		}
	}
	return ids
}

// pairs builds a map from alternating keys and values.
func pairs(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func paramNames(params openapi3.Parameters) []string {
	var names []string
	for _, p := range params {
		names = append(names, p.Value.Name)
	}
	return names
}

func TestBuild_Fixture(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	assert.Equal(t, OpenAPIVersion, doc.OpenAPI)
	assert.Equal(t, "Keycloak Admin REST API", doc.Info.Title)
	assert.Equal(t, "This is a REST API reference for the Keycloak Admin REST API.", doc.Info.Description)
	assert.Equal(t, "24.0.1", doc.Info.Version)

	var tags []string
	for _, tag := range doc.Tags {
		tags = append(tags, tag.Name)
	}
	assert.Equal(t, []string{"Root", "Realms Admin", "Users", "Groups", "Clients"}, tags)

	var paths []string
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		"/",
		"/{realm}",
		"/{realm}/clients/{id1}/protocol-mappers/models/{id2}",
		"/{realm}/clients/{id}/certificates/{attr}/download",
		"/{realm}/groups",
		"/{realm}/groups/{id}/role-mappings",
		"/{realm}/testLDAPConnection",
		"/{realm}/users",
		"/{realm}/users/{id}",
		"/{realm}/users/{id}/groups",
	}, paths)

	assert.Equal(t, pairs(
		"GET /", "get",
		"GET /{realm}", "getByRealm",
		"DELETE /{realm}", "deleteByRealm",
		"POST /{realm}/testLDAPConnection", "postTestLDAPConnection",
		"GET /{realm}/users", "getUsers",
		"PUT /{realm}/users/{id}", "putUser",
		"GET /{realm}/users/{id}/groups", "getUserGroups",
		"GET /{realm}/groups", "getGroupsByRealm",
		"GET /{realm}/groups/{id}/role-mappings", "getRoleMappings",
		"GET /{realm}/clients/{id1}/protocol-mappers/models/{id2}", "getModel",
		"POST /{realm}/clients/{id}/certificates/{attr}/download", "postDownload",
	), operationIDs(doc))

	require.NoError(t, Validate(context.Background(), doc, zerolog.Nop()))
}

func TestBuild_OperationTagsAndSummary(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	op := doc.Paths["/{realm}"].Delete
	require.NotNil(t, op)
	assert.Equal(t, []string{"Realms Admin"}, op.Tags)
	assert.Equal(t, "Delete the realm", op.Summary)
	require.Contains(t, op.Responses, "204")
	assert.Empty(t, op.Responses["204"].Value.Content)
	assert.Equal(t, "No Content", *op.Responses["204"].Value.Description)
}

func TestBuild_LaterDuplicateWins(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	op := doc.Paths["/{realm}/users"].Get
	require.NotNil(t, op)
	assert.Equal(t, "Get users (legacy)", op.Summary)
	assert.Equal(t, []string{"search"}, paramNames(op.Parameters))
}

func TestBuild_PathParameters(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/{realm}/users/{id}", []string{"realm", "id"}},
		{"/{realm}/clients/{id1}/protocol-mappers/models/{id2}", []string{"realm", "id1", "id2"}},
		{"/{realm}/groups/{id}/role-mappings", []string{"realm", "id"}},
		{"/", nil},
	}
	for _, tt := range tests {
		path := tt.path
		item := doc.Paths[path]
		require.NotNil(t, item, path)
		assert.Equal(t, tt.want, paramNames(item.Parameters), path)
		for _, p := range item.Parameters {
			assert.Equal(t, openapi3.ParameterInPath, p.Value.In)
			assert.True(t, p.Value.Required, "%s %s", path, p.Value.Name)
		}
	}

	realm := doc.Paths["/{realm}/users/{id}"].Parameters[0].Value
	assert.Equal(t, "realm name (not id!)", realm.Description)
}

func TestBuild_QueryParameters(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	params := doc.Paths["/{realm}/groups"].Get.Parameters
	require.Len(t, params, 1)
	p := params[0].Value
	assert.Equal(t, "briefRepresentation", p.Name)
	assert.Equal(t, openapi3.ParameterInQuery, p.In)
	assert.False(t, p.Required)
	assert.Equal(t, openapi3.TypeBoolean, p.Schema.Value.Type)
}

func TestBuild_RequestBody(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	body := doc.Paths["/{realm}/users/{id}"].Put.RequestBody
	require.NotNil(t, body)
	assert.True(t, body.Value.Required)
	media := body.Value.Content.Get("application/json")
	require.NotNil(t, media)
	assert.Equal(t, "#/components/schemas/UserRepresentation", media.Schema.Ref)
}

func TestBuild_Responses(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	users := doc.Paths["/{realm}/users"].Get.Responses["200"].Value
	media := users.Content.Get("application/json")
	require.NotNil(t, media)
	assert.Equal(t, openapi3.TypeArray, media.Schema.Value.Type)
	assert.Equal(t, "#/components/schemas/UserRepresentation", media.Schema.Value.Items.Ref)

	download := doc.Paths["/{realm}/clients/{id}/certificates/{attr}/download"].Post.Responses["200"].Value
	media = download.Content.Get("application/octet-stream")
	require.NotNil(t, media)
	assert.Equal(t, openapi3.TypeString, media.Schema.Value.Type)
	assert.Equal(t, "binary", media.Schema.Value.Format)

	root := doc.Paths["/"].Get.Responses["200"].Value
	media = root.Content.Get("application/json")
	require.NotNil(t, media)
	assert.Equal(t, openapi3.TypeObject, media.Schema.Value.Type)
}

func TestBuild_DefaultResponse(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t)

	op := doc.Paths["/{realm}/users/{id}"].Put
	require.Len(t, op.Responses, 1)
	require.Contains(t, op.Responses, "2XX")
	assert.Equal(t, "success", *op.Responses["2XX"].Value.Description)
}

func TestBuild_FiltersApplyBeforeIdentifiers(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t, WithIncludeTags([]string{"Users"}))

	assert.Equal(t, pairs(
		"GET /{realm}/users", "getUsers",
		"PUT /{realm}/users/{id}", "putUser",
		"GET /{realm}/users/{id}/groups", "getGroups",
	), operationIDs(doc))
}

func TestBuild_ExcludeTagsAndMethods(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t, WithExcludeTags([]string{"Root", "Clients"}), WithMethods([]string{"get"}))

	for key := range operationIDs(doc) {
		assert.Regexp(t, `^GET /\{realm\}`, key)
	}
	assert.NotContains(t, doc.Paths, "/{realm}/testLDAPConnection")
	assert.Nil(t, doc.Paths["/{realm}"].Delete)
}

func TestBuild_PathPatterns(t *testing.T) {
	t.Parallel()
	doc := buildFixture(t, WithPathPatterns([]string{"groups"}))

	assert.Len(t, doc.Paths, 3)
	assert.Contains(t, doc.Paths, "/{realm}/users/{id}/groups")
	assert.Contains(t, doc.Paths, "/{realm}/groups")
	assert.Contains(t, doc.Paths, "/{realm}/groups/{id}/role-mappings")
}

func TestBuild_InvalidPathPattern(t *testing.T) {
	t.Parallel()
	_, err := Build(context.Background(), loadFixture(t), WithPathPatterns([]string{"("}))
	var se *SpecError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, InputError, se.Code)
}

func TestBuild_UnsupportedVerb(t *testing.T) {
	t.Parallel()
	doc := page(`<div class="sect3"><h4>Head</h4><pre>HEAD /{realm}</pre></div>`)

	_, err := Build(context.Background(), doc)
	var se *SpecError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, ExtractionError, se.Code)
	assert.Equal(t, "HEAD /{realm}", se.Location)
	var verr *route.UnsupportedVerbError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "HEAD", verr.Verb)
}

func TestBuild_UnmatchedPathParameter(t *testing.T) {
	t.Parallel()
	doc := page(`<div class="sect3"><h4>Get</h4><pre>GET /{realm}</pre>
<h5 id="_parameters">Parameters</h5><table>
<thead><tr><th>Type</th><th>Name</th><th>Description</th><th>Schema</th></tr></thead>
<tbody><tr><td>Path</td><td><strong>tenant</strong><br><em>required</em></td><td></td><td>string</td></tr></tbody>
</table></div>`)

	_, err := Build(context.Background(), doc)
	var uerr *route.UnmatchedPathParameterError
	require.True(t, errors.As(err, &uerr), "got %v", err)
	assert.Equal(t, "tenant", uerr.Name)
	assert.Equal(t, "/{realm}", uerr.Path)
}

func TestBuild_MissingParameterName(t *testing.T) {
	t.Parallel()
	doc := page(`<div class="sect3"><h4>Get</h4><pre>GET /{realm}</pre>
<h5 id="_parameters">Parameters</h5><table>
<thead><tr><th>Type</th><th>Name</th><th>Description</th><th>Schema</th></tr></thead>
<tbody><tr><td>Path</td><td></td><td></td><td>string</td></tr></tbody>
</table></div>`)

	_, err := Build(context.Background(), doc)
	var se *SpecError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, ExtractionError, se.Code)
	assert.Equal(t, "GET /{realm}", se.Location)
}

func TestBuild_HeadingFallbackForVerbPath(t *testing.T) {
	t.Parallel()
	doc := page(`<div class="sect3"><h4>GET /{realm}/roles</h4></div>`)

	out, err := Build(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, out.Paths["/{realm}/roles"])
	assert.Equal(t, "getRoles", out.Paths["/{realm}/roles"].Get.OperationID)
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()
	first := buildFixture(t)
	for i := 0; i < 5; i++ {
		assert.Equal(t, operationIDs(first), operationIDs(buildFixture(t)))
	}
}

func TestBuild_MissingTitle(t *testing.T) {
	t.Parallel()
	doc, err := ParseHTML([]byte(`<html><body><p>nothing here</p></body></html>`))
	require.NoError(t, err)

	_, err = Build(context.Background(), doc)
	var se *SpecError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, ExtractionError, se.Code)
	assert.Contains(t, se.Message, titleSelector)
}

func TestBuildConfig_AllowTag(t *testing.T) {
	t.Parallel()
	cfg := &buildConfig{}
	WithIncludeTags([]string{" Users ", "Groups"})(cfg)
	WithExcludeTags([]string{"Groups"})(cfg)

	assert.True(t, cfg.allowTag("Users"))
	assert.False(t, cfg.allowTag("Groups"), "exclusion wins over inclusion")
	assert.False(t, cfg.allowTag("Clients"), "tags outside the include set are dropped")
	assert.True(t, (&buildConfig{}).allowTag("Clients"), "no sets keeps everything")
}
