package web

import (
	"html/template"
	"time"
)

// pageData feeds pageTemplate. At most one of Video and Download is set.
type pageData struct {
	Link         string
	Notice       string
	NoticeMillis int64
	Video        string
	Download     *downloadLink
}

type downloadLink struct {
	URL      string
	Filename string
}

func newPageData(link string, notifyFor time.Duration) pageData {
	return pageData{Link: link, NoticeMillis: notifyFor.Milliseconds()}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TeraBox Video Downloader &amp; Viewer</title>
<style>
body { font-family: sans-serif; padding: 20px; }
input[type=text] { width: 300px; padding: 5px; }
button { padding: 5px 10px; margin: 0 5px; }
.notice { color: red; margin: 10px; }
video { max-width: 100%; margin: 20px auto; display: block; }
</style>
</head>
<body>
<h2>TeraBox Video Downloader &amp; Viewer</h2>
<form method="get" action="/view">
<input type="text" id="videoUrl" name="url" placeholder="Enter TeraBox URL" value="{{.Link}}">
<button type="submit" id="downloadBtn" formaction="/download">Download</button>
<button type="submit" id="viewBtn" formaction="/view">View</button>
</form>
{{- with .Notice}}
<div class="notice" id="notice">{{.}}</div>
<script>setTimeout(function () { var n = document.getElementById("notice"); if (n) { n.remove(); } }, {{$.NoticeMillis}});</script>
{{- end}}
{{- with .Video}}
<video id="player" controls autoplay src="{{.}}"></video>
{{- end}}
{{- with .Download}}
<a id="download" href="{{.URL}}" download="{{.Filename}}">{{.Filename}}</a>
<script>document.getElementById("download").click();</script>
{{- end}}
</body>
</html>
`))
