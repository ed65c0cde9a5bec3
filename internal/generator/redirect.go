package generator

import (
	"html/template"
	"strings"
)

var redirectTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="{{ .Locale }}">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<meta name="robots" content="noindex">
<meta http-equiv="refresh" content="0; url={{ .Target }}">
<link rel="canonical" href="{{ .Canonical }}">
<script>
(function () {
  var supported = {{ .Locales }};
  var langs = navigator.languages || [navigator.language || ""];
  for (var i = 0; i < langs.length; i++) {
    var code = String(langs[i]).toLowerCase().split("-")[0];
    if (supported.indexOf(code) !== -1) {
      window.location.replace({{ .Base }} + "/" + code + "/");
      return;
    }
  }
  window.location.replace({{ .Target }});
})();
</script>
</head>
<body>
<a href="{{ .Target }}">{{ .Title }}</a>
</body>
</html>
`))

type redirectData struct {
	Locale    string
	Title     string
	Target    string
	Canonical string
	Base      string
	Locales   []string
}

// buildRootRedirect renders the root index.html that sends visitors to their
// browser language when supported and to the default locale otherwise.
func buildRootRedirect(data redirectData) (string, error) {
	var out strings.Builder
	if err := redirectTemplate.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}
