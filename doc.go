// Package uilang binds click behavior to HTML elements from a plain sentence
// written into the page.
//
// The page carries an instruction such as
//
//	<code>clicking on/.btn/adds/.active/to/it</code>
//
// which is parsed into a Rule and bound to every element matching the trigger
// selector. Clicking a trigger adds, removes or toggles the class on the
// clicked element or on all elements matching the target selector.
package uilang
