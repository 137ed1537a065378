package render

const blockTemplates = `
{{define "link"}}<a class="{{.Classes}}" href="{{.Href}}" data-block-id="{{.ID}}"{{if .NewTab}} target="_blank"{{end}}{{if .Rel}} rel="{{.Rel}}"{{end}}{{if .Preview}} data-preview="true" aria-disabled="true"{{end}}{{if .Style}} style="{{.Style}}"{{end}}>{{if .Thumbnail}}<img class="ld-link-thumb" src="{{.Thumbnail}}" alt="" loading="lazy">{{end}}{{if .Icon}}<span class="ld-icon" data-icon="{{.Icon}}" aria-hidden="true"></span>{{end}}{{if .Emoji}}<span class="ld-emoji">{{.Emoji}}</span>{{end}}<span class="ld-link-title">{{.Title}}</span></a>{{end}}

{{define "headerText"}}{{if .Emoji}}<span class="ld-emoji">{{.Emoji}}</span> {{end}}{{.Title}}{{end}}

{{define "header"}}<div class="ld-header ld-align-{{.Align}} ld-weight-{{.Weight}}" data-block-id="{{.ID}}">{{if eq .Level "h2"}}<h2>{{template "headerText" .}}</h2>{{else if eq .Level "h3"}}<h3>{{template "headerText" .}}</h3>{{else}}<h4>{{template "headerText" .}}</h4>{{end}}{{if .Divider}}<hr class="ld-divider">{{end}}</div>{{end}}

{{define "social_icons"}}<nav class="ld-social ld-social-{{.Size}} ld-social-{{.Shape}} ld-social-{{.Spacing}}" aria-label="Social links"{{if .ID}} data-block-id="{{.ID}}"{{end}}>{{range .Icons}}<a class="ld-social-icon" href="{{.Href}}" title="{{.Label}}" aria-label="{{.Label}}" style="{{.Style}}"{{if $.Preview}} data-preview="true"{{else}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Glyph}}</a>{{end}}</nav>{{end}}

{{define "embed"}}<figure class="ld-embed ld-ratio-{{.Ratio}}" data-block-id="{{.ID}}"{{if .Style}} style="{{.Style}}"{{end}}>{{if .Title}}<figcaption>{{.Title}}</figcaption>{{end}}<div class="ld-embed-frame"><iframe src="{{.Src}}" title="{{.FrameTitle}}" loading="lazy" allow="autoplay; clipboard-write; encrypted-media; picture-in-picture" allowfullscreen></iframe></div></figure>{{end}}

{{define "contactBody"}}{{if .Title}}<h3 class="ld-contact-title" id="{{.DialogID}}-title">{{.Title}}</h3>{{end}}{{if .Description}}<p class="ld-muted">{{.Description}}</p>{{end}}<p class="ld-contact-success" role="status"{{if not .Submitted}} hidden{{end}}>{{.SuccessMessage}}</p>{{if .Failed}}<p class="ld-contact-error" role="alert">Something went wrong. Please try again.</p>{{end}}<form class="ld-contact-form"{{if .Preview}} data-preview="true" novalidate{{else}} method="post" action="/contact"{{end}}><input type="hidden" name="blockId" value="{{.ID}}">{{range .Fields}}<label class="ld-field"><span>{{.Label}}{{if .Required}} *{{end}}</span>{{if .Multiline}}<textarea name="{{.Name}}" rows="4"{{if .Required}} required{{end}}>{{.Value}}</textarea>{{else}}<input type="{{.Type}}" name="{{.Name}}" value="{{.Value}}"{{if .Required}} required{{end}}>{{end}}{{if .Error}}<span class="ld-field-error" role="alert">{{.Error}}</span>{{end}}</label>{{end}}<button type="submit" class="ld-submit"{{if .Preview}} disabled{{end}}>{{.ButtonText}}</button></form>{{end}}

{{define "contact_form"}}<section class="ld-contact ld-contact-{{.Variant}}" data-block-id="{{.ID}}">{{if .Modal}}<button type="button" class="ld-link ld-contact-open" data-dialog-open="{{.DialogID}}">{{.ButtonText}}</button><dialog id="{{.DialogID}}" class="ld-dialog" aria-labelledby="{{.DialogID}}-title"{{if .Reopen}} data-reopen="true"{{end}}><button type="button" class="ld-dialog-close" data-dialog-close aria-label="Close">&times;</button>{{template "contactBody" .}}</dialog>{{else}}{{template "contactBody" .}}{{end}}</section>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en" data-theme="{{.ColorMode}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Preview}}<meta name="robots" content="noindex">{{end}}
<style>
:root{ {{.CSSVars}} }
*{box-sizing:border-box}
body{margin:0;font-family:system-ui,-apple-system,"Segoe UI",sans-serif;background:var(--ld-bg);color:var(--ld-text)}
.ld-container{max-width:640px;margin:0 auto;padding:48px 16px;display:flex;flex-direction:column;gap:24px}
.ld-profile{text-align:center;display:flex;flex-direction:column;align-items:center;gap:8px}
.ld-profile h1{margin:0;font-size:1.5rem}
.ld-avatar{width:96px;height:96px;border-radius:50%;object-fit:cover;border:2px solid var(--ld-border)}
.ld-muted{color:var(--ld-muted);margin:0}
.ld-blocks{display:flex;flex-direction:column;gap:12px}
.ld-link{display:flex;align-items:center;gap:10px;padding:14px 18px;background:var(--ld-primary);color:var(--ld-primary-text);text-decoration:none;font-weight:600;border:2px solid var(--ld-primary);cursor:pointer;font-size:1rem}
.ld-link.ld-outline{background:transparent;color:var(--ld-primary)}
.ld-align-left{justify-content:flex-start;text-align:left}.ld-align-center{justify-content:center;text-align:center}.ld-align-right{justify-content:flex-end;text-align:right}
.ld-radius-none{border-radius:0}.ld-radius-sm{border-radius:4px}.ld-radius-md{border-radius:10px}.ld-radius-lg{border-radius:16px}.ld-radius-full{border-radius:999px}
.ld-shadow-sm{box-shadow:0 1px 2px rgba(0,0,0,.15)}.ld-shadow-md{box-shadow:0 4px 10px rgba(0,0,0,.15)}.ld-shadow-lg{box-shadow:0 10px 24px rgba(0,0,0,.2)}
.ld-anim-pulse{animation:ld-pulse 2s infinite}.ld-anim-shake{animation:ld-shake 3s infinite}
@keyframes ld-pulse{0%,100%{transform:scale(1)}50%{transform:scale(1.03)}}
@keyframes ld-shake{0%,90%,100%{transform:translateX(0)}92%,96%{transform:translateX(-3px)}94%,98%{transform:translateX(3px)}}
.ld-link-thumb{width:32px;height:32px;border-radius:6px;object-fit:cover}
.ld-header h2,.ld-header h3,.ld-header h4{margin:8px 0 0}
.ld-weight-normal{font-weight:400}.ld-weight-medium{font-weight:500}.ld-weight-semibold{font-weight:600}.ld-weight-bold{font-weight:700}
.ld-divider{border:0;border-top:1px solid var(--ld-border);margin:8px 0 0}
.ld-social{display:flex;flex-wrap:wrap;justify-content:center}
.ld-social-tight{gap:4px}.ld-social-normal{gap:10px}.ld-social-loose{gap:18px}
.ld-social-icon{display:inline-flex;align-items:center;justify-content:center;color:#fff;text-decoration:none;font-weight:700;font-size:.8rem}
.ld-social-sm .ld-social-icon{width:32px;height:32px}.ld-social-md .ld-social-icon{width:40px;height:40px}.ld-social-lg .ld-social-icon{width:52px;height:52px}
.ld-social-circle .ld-social-icon{border-radius:50%}.ld-social-rounded .ld-social-icon{border-radius:10px}.ld-social-square .ld-social-icon{border-radius:0}
.ld-embed{margin:0;width:100%}
.ld-embed figcaption{margin-bottom:6px;font-weight:600}
.ld-embed-frame{position:relative;width:100%}
.ld-embed-frame iframe{width:100%;height:100%;border:0;border-radius:10px}
.ld-ratio-16x9 .ld-embed-frame{aspect-ratio:16/9}.ld-ratio-4x3 .ld-embed-frame{aspect-ratio:4/3}.ld-ratio-1x1 .ld-embed-frame{aspect-ratio:1/1}.ld-ratio-auto .ld-embed-frame{height:352px}
.ld-contact{background:var(--ld-surface);border:1px solid var(--ld-border);border-radius:12px;padding:16px}
.ld-contact-modal{background:none;border:0;padding:0}
.ld-contact-form{display:flex;flex-direction:column;gap:10px}
.ld-field{display:flex;flex-direction:column;gap:4px;font-size:.9rem}
.ld-field input,.ld-field textarea{padding:10px;border:1px solid var(--ld-border);border-radius:8px;background:var(--ld-bg);color:var(--ld-text);font:inherit}
.ld-field-error,.ld-contact-error{color:#dc2626;font-size:.85rem;margin:0}
.ld-contact-success{color:#16a34a;margin:0}
.ld-submit{padding:12px;border:0;border-radius:8px;background:var(--ld-primary);color:var(--ld-primary-text);font-weight:600;cursor:pointer}
.ld-submit:disabled{opacity:.6;cursor:not-allowed}
.ld-dialog{border:1px solid var(--ld-border);border-radius:12px;background:var(--ld-surface);color:var(--ld-text);max-width:480px;width:90%;padding:20px}
.ld-dialog::backdrop{background:rgba(0,0,0,.5)}
.ld-dialog-close{float:right;background:none;border:0;font-size:1.4rem;color:var(--ld-muted);cursor:pointer}
</style>
</head>
<body class="ld-page{{if .Preview}} ld-preview{{end}}">
<main class="ld-container">
<header class="ld-profile">{{if .Avatar}}<img class="ld-avatar" src="{{.Avatar}}" alt="{{.Name}}">{{end}}{{if .Name}}<h1>{{.Name}}</h1>{{end}}{{if .Bio}}<p class="ld-muted">{{.Bio}}</p>{{end}}{{.SocialRow}}</header>
<section class="ld-blocks">{{range .Blocks}}{{.}}{{end}}</section>
</main>
<script>
document.addEventListener("click", function (event) {
  var opener = event.target.closest("[data-dialog-open]");
  if (opener) {
    var dialog = document.getElementById(opener.getAttribute("data-dialog-open"));
    if (dialog && dialog.showModal) { dialog.showModal(); }
    return;
  }
  var closer = event.target.closest("[data-dialog-close]");
  if (closer) {
    var parent = closer.closest("dialog");
    if (parent) { parent.close(); }
  }
});
document.querySelectorAll("dialog[data-reopen]").forEach(function (dialog) {
  if (dialog.showModal) { dialog.showModal(); }
});
{{if .Preview}}document.addEventListener("click", function (event) {
  if (event.target.closest("a[data-preview]")) { event.preventDefault(); }
});
document.addEventListener("submit", function (event) { event.preventDefault(); });
{{end}}</script>
</body>
</html>
{{end}}
`
