/*
Package scope builds the rule sets that move a flat resource route file
under a parent resource, for example divisions under tournaments:

	POST /divisions            ->  POST /tournaments/:tournamentId/divisions
	GET  /divisions/:id        ->  GET  /tournaments/:tournamentId/divisions/:id
	POST /divisions/:id/pools  ->  POST /tournaments/:tournamentId/divisions/:divisionId/pools

The rules run in two stages. The schemas stage swaps the file header,
imports the parent table and declares the new params schemas. The routes
stage adds the lookup helpers and, for every route, rewrites the path and
params type, validates the params at the top of the handler and checks
ownership once the ids are known.

Every insertion and rewrite carries a guard, so running a stage on its own
output changes nothing. Routes rules require the params schemas anchor; on a
file the schemas stage never touched they are reported as cascades and the
text is left alone.
*/
package scope
