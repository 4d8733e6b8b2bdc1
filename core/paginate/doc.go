// Package paginate renders an element collection as pages inside a single
// live chat message and drives the navigation loop over it: trigger
// resolution, per-actor authorization, timeout-driven expiration, and
// user-registered action callbacks. It is platform-agnostic; adapters supply
// the RenderPort and InputSource ends.
package paginate
