package scope

import (
	"regexp"
	"strings"

	"github.com/walteh/routepatch/pkg/text"
)

// within matches lazily up to the next route registration, which keeps a
// pattern anchored on one route header inside that route's handler.
const within = `(?:(?!fastify\.)[\s\S])*?`

type validation int

const (
	// insertParams handlers do not validate params yet
	insertParams validation = iota
	// reuseParams handlers already validate the old child params schema
	reuseParams
	// numberParams handlers convert the child id with Number and isNaN
	numberParams
)

type route struct {
	id      string
	method  string
	oldPath string
	newPath string
	schema  string
	fields  string
	mode    validation
	check   string
}

func routes(n Names) []route {
	rs := []route{
		{id: "create", method: "post", oldPath: "/%children%", schema: "%parent%ParamsSchema", fields: "%parentId%", mode: insertParams, check: parentCheck},
		{id: "list", method: "get", oldPath: "/%children%", schema: "%parent%ParamsSchema", fields: "%parentId%", mode: insertParams, check: parentCheck},
		{id: "get", method: "get", oldPath: "/%children%/:id", schema: "%parent%%Child%ParamsSchema", fields: "%parentId%, id", mode: reuseParams, check: childCheck("id")},
		{id: "update", method: "put", oldPath: "/%children%/:id", schema: "%parent%%Child%ParamsSchema", fields: "%parentId%, id", mode: reuseParams, check: childCheck("id")},
		{id: "delete", method: "delete", oldPath: "/%children%/:id", schema: "%parent%%Child%ParamsSchema", fields: "%parentId%, id", mode: reuseParams, check: childCheck("id")},
	}
	for _, sr := range n.SideRoutes {
		rs = append(rs, route{
			id:      strings.ReplaceAll(sr.Suffix, "/", "-"),
			method:  sr.Method,
			oldPath: "/%children%/:%childId%/" + sr.Suffix,
			schema:  "%child%IdParamsSchema",
			fields:  "%parentId%, %childId%",
			mode:    numberParams,
			check:   childCheck("%childId%"),
		})
	}
	for i := range rs {
		rs[i].newPath = "/%parents%/:%parentId%" + rs[i].oldPath
	}
	return rs
}

func (r route) oldHeader() string {
	return `fastify\.` + r.method + `<\{(?:\s+Params: \{ \w+: number \};)?(\s+(?:Body|Querystring): z\.infer<typeof \w+>;)?\s+\}>\('` + regexp.QuoteMeta(r.oldPath) + `',`
}

func (r route) newHeader() string {
	return `fastify\.` + r.method + `<\{\s+Params: z\.infer<typeof ` + r.schema + `>;(?:\s+(?:Body|Querystring): z\.infer<typeof \w+>;)?\s+\}>\('` + regexp.QuoteMeta(r.newPath) + `',`
}

// rules returns the rewrites for one route: path and params type, params
// validation, then the ownership check once the ids are known.
func (r route) rules() []*text.Rule {
	anchor := "route:" + r.id
	params := "params:" + r.id
	head := r.newHeader() + within

	out := []*text.Rule{
		text.Replace(r.id+"-route", r.oldHeader(),
			"fastify."+r.method+"<{\n    Params: z.infer<typeof "+r.schema+">;${1}\n  }>('"+r.newPath+"',").
			Describe("prefix the " + r.id + " route path and switch its params type").
			WithGuard(r.newHeader()).
			Requiring("params-schemas").
			Producing(anchor),
	}

	var validate *text.Rule
	switch r.mode {
	case insertParams:
		validate = text.InsertAfter(r.id+"-params",
			head+`async \(request, reply\) => \{`,
			"\n"+paramsBlock(r.schema, r.fields)+"\n")
	case reuseParams:
		validate = text.Replace(r.id+"-params",
			`(`+head+`)%child%ParamsSchema\.safeParse\(request\.params\);(`+within+`)const \{ id \} = paramsResult\.data;`,
			"${1}"+r.schema+".safeParse(request.params);${2}const { "+r.fields+" } = paramsResult.data;")
	case numberParams:
		validate = text.Replace(r.id+"-params",
			`(`+head+`async \(request, reply\) => \{\n)    const %childId% = Number\(request\.params\.%childId%\);`,
			"${1}"+text.Escape(paramsBlock(r.schema, r.fields)))
	}
	out = append(out, validate.
		Describe("validate the "+r.id+" route params").
		WithEngine(text.EngineRegexp2).
		WithGuard(head+`const paramsResult = `+r.schema+`\.safeParse\(request\.params\);`).
		Requiring(anchor).
		Producing(params))

	if r.mode == numberParams {
		out = append(out, text.Replace(r.id+"-drop-isnan",
			`(`+head+`paramsResult\.data;)\n\s*if \(isNaN\(%childId%\)\) \{\s+return reply\.status\(400\)\.send\(\{\s+error: 'Invalid %child% ID',\s+\}\);\s+\}`,
			"${1}").
			Describe("drop the old isNaN check of the " + r.id + " route").
			WithEngine(text.EngineRegexp2).
			Requiring(params))
	}

	out = append(out, text.InsertAfter(r.id+"-check", head+`\n    try \{`, r.check).
		Describe("check ownership in the "+r.id+" route").
		WithEngine(text.EngineRegexp2).
		WithGuard(head+`\n    try \{`+regexp.QuoteMeta(r.check)).
		Requiring(params, "helpers").
		Producing("check:"+r.id))

	switch r.id {
	case "create":
		out = append(out, text.Replace("create-values",
			`(`+head+`\.values\(\{ )(\w+(?:, \w+)*)( \}\))`,
			"${1}${2}, %parentColumn%: %parentId%${3}").
			Describe("store the parent id on create").
			WithEngine(text.EngineRegexp2).
			WithGuard(head+`\.values\(\{ [^}]*%parentColumn%: `).
			Requiring(params))
	case "list":
		where := "\n        .where(eq(%children%.%parentColumn%, %parentId%))"
		list := head + `const %children%List = await db\s+\.select\(\)\s+\.from\(%children%\)`
		count := head + `\.select\(\{ count: [^\n]*\}\)\s+\.from\(%children%\)`
		out = append(out,
			text.InsertAfter("list-filter", list, where).
				Describe("filter the list query by parent").
				WithEngine(text.EngineRegexp2).
				WithGuard(list+`\s+\.where\(eq\(%children%\.%parentColumn%, `).
				Requiring(params),
			text.InsertAfter("list-count-filter", count, where).
				Describe("filter the list count by parent").
				WithEngine(text.EngineRegexp2).
				WithGuard(count+`\s+\.where\(eq\(%children%\.%parentColumn%, `).
				Requiring(params),
		)
	}

	return out
}
