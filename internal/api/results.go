package api

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rubysgifts/giftd/internal/storage"
)

// resultPageTemplate renders a minimal shareable results page. The page
// fetches the stored payload from the JSON endpoint and renders it client
// side, so the server never interpolates idea content into HTML.
var resultPageTemplate = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Your Gift Ideas</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #2d2a26; }
.idea { border: 1px solid #e3ddd3; border-radius: 12px; padding: 1.25rem; margin-bottom: 1.25rem; }
.idea h2 { margin-top: 0; }
.images img { width: 120px; height: 120px; object-fit: cover; border-radius: 8px; margin-right: 0.5rem; }
.links a { margin-right: 1rem; }
.error { color: #a33; }
</style>
</head>
<body>
<h1>Your Gift Ideas</h1>
<div id="ideas">Loading&hellip;</div>
<script>
window.RESULT_ID = {{.ResultID}};
fetch("/api/results/" + window.RESULT_ID)
  .then(function (r) {
    if (!r.ok) { throw new Error("result unavailable (" + r.status + ")"); }
    return r.json();
  })
  .then(function (data) {
    var root = document.getElementById("ideas");
    root.textContent = "";
    (data.gift_ideas || []).forEach(function (idea) {
      var card = document.createElement("div");
      card.className = "idea";
      var title = document.createElement("h2");
      title.textContent = idea.title;
      card.appendChild(title);
      var desc = document.createElement("p");
      desc.textContent = idea.description;
      card.appendChild(desc);
      var imgs = document.createElement("div");
      imgs.className = "images";
      (idea.images || []).forEach(function (img) {
        var el = document.createElement("img");
        el.src = img.thumbnail || img.url;
        el.alt = img.title || idea.title;
        el.onerror = function () { el.remove(); };
        imgs.appendChild(el);
      });
      card.appendChild(imgs);
      var links = document.createElement("p");
      links.className = "links";
      if (idea.amazon_link) {
        var a = document.createElement("a");
        a.href = idea.amazon_link;
        a.textContent = "Shop on Amazon";
        a.rel = "noopener";
        links.appendChild(a);
      }
      card.appendChild(links);
      root.appendChild(card);
    });
  })
  .catch(function (err) {
    var root = document.getElementById("ideas");
    root.className = "error";
    root.textContent = err.message;
  });
</script>
</body>
</html>
`))

func handleResultPage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Resolve existence up front so the share link itself 404s cleanly
		// instead of serving a page that errors after load.
		_, err := deps.Store.GetResult(id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "result not found", http.StatusNotFound)
			return
		case errors.Is(err, storage.ErrExpired):
			http.Error(w, "result has expired", http.StatusNotFound)
			return
		case err != nil:
			deps.Logger.Error("loading result page failed", "error", err, "result_id", id)
			http.Error(w, "failed to load result", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := resultPageTemplate.Execute(w, map[string]string{"ResultID": id}); err != nil {
			deps.Logger.Error("rendering result page failed", "error", err, "result_id", id)
		}
	}
}
