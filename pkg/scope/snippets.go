package scope

import (
	"fmt"
	"strings"
)

// Snippets are TypeScript text with %name% placeholders, expanded per Names.

const headerIntro = `/**
 * %Child% CRUD endpoints, scoped to a %parent%.
 * Every route requires the %parent% id in its path.
 *
 * Routes:
`

const paramsSchemas = `/**
 * %Parent% ID parameter schema.
 */
const %parent%ParamsSchema = z.object({
  %parentId%: z.coerce.number().int().positive(),
});

/**
 * %Parent% + %Child% ID parameter schema.
 */
const %parent%%Child%ParamsSchema = z.object({
  %parentId%: z.coerce.number().int().positive(),
  id: z.coerce.number().int().positive(),
});

/**
 * %Child% ID parameter schema (for side routes).
 */
const %child%IdParamsSchema = z.object({
  %parentId%: z.coerce.number().int().positive(),
  %childId%: z.coerce.number().int().positive(),
});

`

var helpers = `
  /**
   * Validate %parent% exists and return it.
   * Returns null and sends 404 response if not found.
   */
  async function validate%Parent%(%parentId%: number, reply: any) {
    const %parent% = await db
      .select()
      .from(%parents%)
      .where(eq(%parents%.id, %parentId%))
      .limit(1)
      .then((rows) => rows[0]);

    if (!%parent%) {
      reply.status(404).send({
        error: '%Parent% not found',
        message: ` + "`%Parent% with ID ${%parentId%} not found`" + `,
      });
      return null;
    }

    return %parent%;
  }

  /**
   * Validate %child% belongs to %parent%.
   * Returns null and sends 403/404 response if validation fails.
   */
  async function validate%Child%In%Parent%(
    %parentId%: number,
    %childId%: number,
    reply: any
  ) {
    const %child% = await db
      .select()
      .from(%children%)
      .where(eq(%children%.id, %childId%))
      .limit(1)
      .then((rows) => rows[0]);

    if (!%child%) {
      reply.status(404).send({
        error: '%Child% not found',
        message: ` + "`%Child% with ID ${%childId%} not found`" + `,
      });
      return null;
    }

    if (%child%.%parentColumn% !== %parentId%) {
      reply.status(403).send({
        error: 'Forbidden',
        message: '%Child% does not belong to this %parent%',
      });
      return null;
    }

    return %child%;
  }
`

// paramsBlock parses the new params at the top of a handler. The schema and
// destructured names vary per route.
func paramsBlock(schema, fields string) string {
	return `    // Validate params
    const paramsResult = ` + schema + `.safeParse(request.params);
    if (!paramsResult.success) {
      return reply.status(400).send({
        error: 'Invalid parameters',
        details: paramsResult.error.flatten(),
      });
    }

    const { ` + fields + ` } = paramsResult.data;`
}

const parentCheck = `
      // Validate %parent% exists
      const %parent% = await validate%Parent%(%parentId%, reply);
      if (!%parent%) return;
`

func childCheck(idVar string) string {
	return `
      // Validate %child% belongs to %parent%
      const valid%Child% = await validate%Child%In%Parent%(%parentId%, ` + idVar + `, reply);
      if (!valid%Child%) return;
`
}

// header renders the new file header listing every scoped route.
func header(routes []route) string {
	var b strings.Builder
	b.WriteString(headerIntro)
	for _, r := range routes {
		fmt.Fprintf(&b, " * - %-6s %s\n", strings.ToUpper(r.method), r.newPath)
	}
	b.WriteString(" */")
	return b.String()
}
