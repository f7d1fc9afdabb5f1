/*
Package presenter turns blueprints into renderable views.

Render produces the four-section page view shown after generation. Card
produces the compact row used by collection listings. Both are pure and
accept nil.
*/
package presenter
