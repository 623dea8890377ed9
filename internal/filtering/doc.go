// Package filtering narrows extension listings by package name, language and
// NSFW flag.
//
// Package names are matched against glob patterns. A '*' matches across the
// dots of a package name, so "eu.kanade.tachiyomi.extension.en.*" selects
// every English extension of the main repository.
//
// Languages are matched exactly against the extension language and the
// languages of its bundled sources. A multi-language extension ("all")
// passes an include list naming any language one of its sources serves.
//
// Both filters follow the same precedence rules:
//
//  1. A matching exclude rule drops the extension
//  2. A matching include rule keeps it
//  3. When include rules exist and none match, it is dropped
//  4. Otherwise it is kept
//
// An extension is listed only when it passes every configured filter.
package filtering
