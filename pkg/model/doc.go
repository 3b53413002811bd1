// Package model defines the configuration schema, data records and render
// state shared by the loader, renderers and the component. Schema documents
// describe an ordered list of element declarations (text, button, link) whose
// string fields are templates filled from one data record at a time. Unknown
// element kinds and action types are preserved verbatim so renderers can
// degrade gracefully instead of rejecting the payload.
package model
