// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The query path is Retriever then Composer, fronted by AnswerEngine.
// The build path is CorpusService (source files to plain text) then
// IndexService (plain text to a persisted corpus).
package services
