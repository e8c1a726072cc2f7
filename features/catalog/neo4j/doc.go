// Package neo4j implements the catalogue repository over a Neo4j product
// graph. Product nodes carry gin, name, category, description, embedding
// text and a specifications_json property; compatibility is expressed by
// COMPATIBLE_WITH relationships, with DETERMINES carrying the power-source
// driven feeder and cooler pairings of the source data. Package inmem under
// clients/neo4j provides the in-memory equivalent for tests.
package neo4j
