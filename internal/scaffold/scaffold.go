// Package scaffold holds the fixed bootstrap file set seeded into every
// workspace and the merge rule that layers AI-generated files on top of it.
package scaffold

import (
	"github.com/devfoliohq/boltgen/internal/models"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Document</title>
    <script src="https://cdn.tailwindcss.com"></script>
  </head>
  <body>
    <div id="root"></div>
  </body>
</html>`

const appCSS = `@tailwind base;
@tailwind components;
@tailwind utilities;`

const tailwindConfig = `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: [
    "./src/**/*.{js,jsx,ts,tsx}",
  ],
  theme: {
    extend: {},
  },
  plugins: [],
}`

const postcssConfig = `/** @type {import('postcss-load-config').Config} */
const config = {
  plugins: {
    tailwindcss: {},
  },
};

export default config;
`

// Default returns a fresh copy of the scaffold so callers can merge into it
// without affecting later calls.
func Default() models.FileSet {
	return models.FileSet{
		"/public/index.html":  {Code: indexHTML},
		"/App.css":            {Code: appCSS},
		"/tailwind.config.js": {Code: tailwindConfig},
		"/postcss.config.js":  {Code: postcssConfig},
	}
}

// Merge combines base and overlay into a new file set. Every path from both
// inputs is present in the result; when a path exists in both, the overlay
// file replaces the base file wholesale. Neither input is mutated.
func Merge(base, overlay models.FileSet) models.FileSet {
	merged := make(models.FileSet, len(base)+len(overlay))
	for path, f := range base {
		merged[path] = f
	}
	for path, f := range overlay {
		merged[path] = f
	}
	return merged
}
