// Package composer drives PHP dependency management for installed modules.
//
// Modules declared with composer-name are installed directly with
// "composer require". Modules that request the "composer update" step are
// registered with the Planner, which writes a single composer.local.json
// listing each module's composer.json for the merge plugin and then runs one
// unified "composer update" at the MediaWiki root.
package composer
