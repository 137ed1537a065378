package render

import (
	"bytes"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/MarcoPoloResearchLab/linkden/internal/theme"
	"go.uber.org/zap"
)

// Mode distinguishes the public page from the admin preview.
type Mode int

const (
	// ModeLive renders tracked links and a working contact form.
	ModeLive Mode = iota
	// ModePreview renders inert links and forms.
	ModePreview
)

// ContactState carries the outcome of a contact form post back into the page.
type ContactState struct {
	BlockID   string
	Submitted bool
	Failed    bool
	Errors    contact.FieldErrors
	Values    contact.Request
}

// Options are the inputs shared by every block on a page.
type Options struct {
	Mode      Mode
	ColorMode theme.ColorMode
	Colors    theme.Colors
	Networks  []social.Network
	Contact   ContactState
}

// Renderer turns blocks into HTML fragments.
type Renderer struct {
	templates *template.Template
	logger    *zap.Logger
}

// NewRenderer parses the block and page templates.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		templates: template.Must(template.New("blocks").Parse(blockTemplates)),
		logger:    logger,
	}
}

var defaultRenderer = NewRenderer(nil)

// RenderBlock renders a block with the default renderer.
func RenderBlock(block blocks.Block, options Options) template.HTML {
	return defaultRenderer.RenderBlock(block, options)
}

// RenderBlock dispatches on the block kind. Unknown kinds render nothing.
func (r *Renderer) RenderBlock(block blocks.Block, options Options) template.HTML {
	config := block.ParsedConfig()
	switch block.Kind() {
	case blocks.KindLink:
		return r.execute("link", newLinkView(block, blocks.DecodeLinkConfig(config), options))
	case blocks.KindHeader:
		view, ok := newHeaderView(block, blocks.DecodeHeaderConfig(config))
		if !ok {
			return ""
		}
		return r.execute("header", view)
	case blocks.KindSocialIcons:
		view, ok := newSocialView(block, blocks.DecodeSocialIconsConfig(config), options)
		if !ok {
			return ""
		}
		return r.execute("social_icons", view)
	case blocks.KindEmbed:
		view, ok := newEmbedView(block, blocks.DecodeEmbedConfig(config))
		if !ok {
			return ""
		}
		return r.execute("embed", view)
	case blocks.KindContactForm:
		return r.execute("contact_form", newContactView(block, blocks.DecodeContactFormConfig(config), options))
	default:
		return ""
	}
}

func (r *Renderer) execute(name string, data any) template.HTML {
	var buffer bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buffer, name, data); err != nil {
		r.logger.Warn("block render failed", zap.String("template", name), zap.Error(err))
		return ""
	}
	return template.HTML(buffer.String())
}

type linkView struct {
	ID        string
	Href      string
	Title     string
	Icon      string
	Emoji     string
	Thumbnail string
	Classes   string
	Rel       string
	NewTab    bool
	Preview   bool
	Style     template.CSS
}

func newLinkView(block blocks.Block, config blocks.LinkConfig, options Options) linkView {
	preview := options.Mode == ModePreview
	view := linkView{
		ID:      block.ID,
		Title:   blocks.StringValue(block.Title),
		Icon:    blocks.StringValue(block.Icon),
		Emoji:   config.Emoji,
		Preview: preview,
		Href:    "#",
	}
	if view.Title == "" {
		view.Title = blocks.StringValue(block.URL)
	}
	if thumbnail, ok := httpURL(config.Thumbnail); ok {
		view.Thumbnail = thumbnail.String()
	}

	classes := []string{
		"ld-link",
		"ld-align-" + config.Align,
		"ld-radius-" + config.Radius,
		"ld-shadow-" + config.Shadow,
	}
	if config.Outline {
		classes = append(classes, "ld-outline")
	}
	if config.Animation != blocks.AnimationNone {
		classes = append(classes, "ld-anim-"+config.Animation)
	}
	view.Classes = strings.Join(classes, " ")

	var style []string
	if theme.IsHexColor(config.CustomColor) {
		style = append(style, "background-color:"+config.CustomColor, "border-color:"+config.CustomColor)
	}
	if theme.IsHexColor(config.CustomTextColor) {
		style = append(style, "color:"+config.CustomTextColor)
	}
	if len(style) > 0 {
		view.Style = template.CSS(strings.Join(style, ";"))
	}

	if preview {
		return view
	}
	if blocks.StringValue(block.URL) != "" {
		view.Href = "/go/" + url.PathEscape(block.ID)
	}
	view.NewTab = config.NewTab
	rel := []string{}
	if config.NewTab {
		rel = append(rel, "noopener", "noreferrer")
	}
	if config.NoFollow {
		rel = append(rel, "nofollow")
	}
	view.Rel = strings.Join(rel, " ")
	return view
}

type headerView struct {
	ID      string
	Title   string
	Emoji   string
	Level   string
	Align   string
	Weight  string
	Divider bool
}

func newHeaderView(block blocks.Block, config blocks.HeaderConfig) (headerView, bool) {
	view := headerView{
		ID:      block.ID,
		Title:   blocks.StringValue(block.Title),
		Emoji:   config.Emoji,
		Level:   config.Level,
		Align:   config.Align,
		Weight:  config.Weight,
		Divider: config.Divider,
	}
	if view.Title == "" && view.Emoji == "" {
		return headerView{}, false
	}
	return view, true
}

type socialIconView struct {
	Href  string
	Label string
	Glyph string
	Style template.CSS
}

type socialView struct {
	ID      string
	Size    string
	Shape   string
	Spacing string
	Preview bool
	Icons   []socialIconView
}

func newSocialView(block blocks.Block, config blocks.SocialIconsConfig, options Options) (socialView, bool) {
	entries := blocks.ParseSocialIcons(blocks.StringValue(block.SocialIcons))
	if len(entries) == 0 {
		for _, network := range options.Networks {
			if network.IsActive {
				entries = append(entries, blocks.SocialIcon{Platform: network.Slug, URL: network.URL})
			}
		}
	}
	view := socialView{
		ID:      block.ID,
		Size:    config.Size,
		Shape:   config.Shape,
		Spacing: config.Spacing,
		Preview: options.Mode == ModePreview,
	}
	for _, entry := range entries {
		brand, _ := social.BrandFor(entry.Platform)
		href := "#"
		if !view.Preview {
			parsed, ok := httpURL(entry.URL)
			if !ok {
				if strings.HasPrefix(strings.ToLower(entry.URL), "mailto:") {
					href = entry.URL
				} else {
					continue
				}
			} else {
				href = parsed.String()
			}
		}
		view.Icons = append(view.Icons, socialIconView{
			Href:  href,
			Label: brand.Name,
			Glyph: brand.Glyph,
			Style: template.CSS("background-color:" + brand.Color),
		})
	}
	if len(view.Icons) == 0 {
		return socialView{}, false
	}
	return view, true
}

type embedView struct {
	ID         string
	Src        string
	Title      string
	FrameTitle string
	Ratio      string
	Style      template.CSS
}

func newEmbedView(block blocks.Block, config blocks.EmbedConfig) (embedView, bool) {
	src, ok := EmbedURL(blocks.StringValue(block.EmbedType), blocks.StringValue(block.EmbedURL))
	if !ok {
		return embedView{}, false
	}
	title := blocks.StringValue(block.Title)
	view := embedView{
		ID:         block.ID,
		Src:        src,
		FrameTitle: title,
		Ratio:      strings.ReplaceAll(config.AspectRatio, ":", "x"),
	}
	if view.FrameTitle == "" {
		view.FrameTitle = "Embedded media"
	}
	if config.ShowTitle {
		view.Title = title
	}
	if config.MaxWidth > 0 {
		view.Style = template.CSS("max-width:" + strconv.Itoa(config.MaxWidth) + "px;margin:0 auto")
	}
	return view, true
}

type fieldView struct {
	Name      string
	Label     string
	Type      string
	Value     string
	Error     string
	Required  bool
	Multiline bool
}

type contactView struct {
	ID             string
	DialogID       string
	Title          string
	Description    string
	Variant        string
	ButtonText     string
	SuccessMessage string
	Modal          bool
	Preview        bool
	Submitted      bool
	Failed         bool
	Reopen         bool
	Fields         []fieldView
}

func newContactView(block blocks.Block, config blocks.ContactFormConfig, options Options) contactView {
	view := contactView{
		ID:             block.ID,
		DialogID:       "ld-contact-" + block.ID,
		Title:          blocks.StringValue(block.Title),
		Description:    config.Description,
		Variant:        config.Variant,
		ButtonText:     config.ButtonText,
		SuccessMessage: config.SuccessMessage,
		Modal:          config.Variant == blocks.ContactVariantModal,
		Preview:        options.Mode == ModePreview,
	}

	var values contact.Request
	var errs contact.FieldErrors
	if !view.Preview && options.Contact.BlockID == block.ID {
		view.Submitted = options.Contact.Submitted
		view.Failed = options.Contact.Failed
		if !view.Submitted {
			values = options.Contact.Values
			errs = options.Contact.Errors
		}
		view.Reopen = view.Modal
	}

	view.Fields = append(view.Fields,
		fieldView{Name: "name", Label: "Name", Type: "text", Value: values.Name, Error: errs["name"], Required: true},
		fieldView{Name: "email", Label: "Email", Type: "email", Value: values.Email, Error: errs["email"], Required: true},
	)
	if config.ShowPhone {
		view.Fields = append(view.Fields, fieldView{Name: "phone", Label: "Phone", Type: "tel", Value: values.Phone, Error: errs["phone"]})
	}
	if config.ShowCompany {
		view.Fields = append(view.Fields, fieldView{Name: "company", Label: "Company", Type: "text", Value: values.Company, Error: errs["company"]})
	}
	if config.ShowSubject {
		view.Fields = append(view.Fields, fieldView{Name: "subject", Label: "Subject", Type: "text", Value: values.Subject, Error: errs["subject"]})
	}
	view.Fields = append(view.Fields,
		fieldView{Name: "message", Label: "Message", Value: values.Message, Error: errs["message"], Required: true, Multiline: true},
	)
	return view
}

// Profile is the page header.
type Profile struct {
	Name   string
	Bio    string
	Avatar string
}

// Page is everything needed to render a full profile page.
type Page struct {
	Profile Profile
	Blocks  []blocks.Block
	Options Options
}

type pageView struct {
	Title     string
	Name      string
	Bio       string
	Avatar    string
	ColorMode theme.ColorMode
	CSSVars   template.CSS
	Preview   bool
	SocialRow template.HTML
	Blocks    []template.HTML
}

// RenderPage writes the full HTML document. Blocks are rendered in the order
// given; callers pass the already filtered public or preview list.
func (r *Renderer) RenderPage(w io.Writer, page Page) error {
	options := page.Options
	if options.ColorMode == "" {
		options.ColorMode = theme.ModeLight
	}
	view := pageView{
		Title:     page.Profile.Name,
		Name:      page.Profile.Name,
		Bio:       page.Profile.Bio,
		ColorMode: options.ColorMode,
		CSSVars:   template.CSS(options.Colors.CSSVariables()),
		Preview:   options.Mode == ModePreview,
	}
	if view.Title == "" {
		view.Title = "LinkDen"
	}
	if avatar, ok := httpURL(page.Profile.Avatar); ok {
		view.Avatar = avatar.String()
	}
	row, ok := newSocialView(blocks.Block{}, blocks.DecodeSocialIconsConfig(nil), options)
	if ok {
		view.SocialRow = r.execute("social_icons", row)
	}
	for _, block := range page.Blocks {
		if fragment := r.RenderBlock(block, options); fragment != "" {
			view.Blocks = append(view.Blocks, fragment)
		}
	}
	return r.templates.ExecuteTemplate(w, "page", view)
}

// LinkTarget returns where a link block's tracked redirect should land. Only
// http(s), mailto and tel destinations are followed.
func LinkTarget(block blocks.Block) (string, bool) {
	if block.Kind() != blocks.KindLink {
		return "", false
	}
	parsed, err := url.Parse(strings.TrimSpace(blocks.StringValue(block.URL)))
	if err != nil {
		return "", false
	}
	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return "", false
		}
	case "mailto", "tel":
		if parsed.Opaque == "" {
			return "", false
		}
	default:
		return "", false
	}
	return parsed.String(), true
}
