// Package internal contains the implementation packages of wikicore.
//
// # Package Organization
//
// The packages follow the rendering pipeline:
//
//   - syntax, listener, params: syntax ids and the event protocol
//   - parser: source text to events, one package per syntax
//   - block: the block tree (XDOM) and the builder listening to events
//   - transformation, macro: in-place rewriting of the tree, macros included
//   - renderer: events back to text, one package per syntax
//   - reference, model, links: resource references, entities and extraction
//   - component, event, observation: the RoleHint registry and event bus
//   - query: XWQL to HQL translation
//   - cache, document, diff: document sources, caches and comparison
//   - config, errors, logging, version, di: ambient services and bootstrap
//
// # Inter-Package Communication
//
// Parsers, renderers, macros and transformations are registered in a
// component.Manager and looked up by role and hint. Registration fires
// observation events, which are stacked during bootstrap and delivered once
// the registry is complete. Document changes travel the same bus and
// invalidate the caches.
package internal
