package monitoring

import (
	"fmt"
	"net/http"
)

const dashboardHTML = `<!DOCTYPE html>
<html>
<head><title>Wormnet Monitor</title></head>
<body>
<h1>Wormnet Monitor</h1>
<p>The simulation is being monitored. Useful endpoints:</p>
<ul>
<li><a href="/api/now">/api/now</a></li>
<li><a href="/api/list_components">/api/list_components</a></li>
<li><a href="/api/hangdetector/buffers">/api/hangdetector/buffers</a></li>
<li><a href="/api/progress">/api/progress</a></li>
<li><a href="/api/resource">/api/resource</a></li>
</ul>
</body>
</html>`

func dashboardPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, dashboardHTML)
}
