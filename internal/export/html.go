// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/jeranaias/mentor-tui/internal/state"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports sessions to standalone HTML with embedded CSS and
// chroma-highlighted code blocks.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a session to HTML format.
func (e *HTMLExporter) Export(session *state.ChatSession) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if len(session.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(session.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"mentor-tui\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", session.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.themeClass()))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(session))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for i := range session.Messages {
		sb.WriteString(e.renderMessage(&session.Messages[i]))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>mentor TUI</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// themeClass normalizes the theme option; anything unrecognized falls
// back to light.
func (e *HTMLExporter) themeClass() string {
	if e.options.Theme == "dark" {
		return "dark"
	}
	return "light"
}

// chromaStyle maps the export theme onto a chroma style name.
func (e *HTMLExporter) chromaStyle() string {
	if e.themeClass() == "dark" {
		return "monokai"
	}
	return "github"
}

// =============================================================================
// RENDERING
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(session *state.ChatSession) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(session.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(session.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(session.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(msg *state.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(string(msg.Role))
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", roleLabel(msg.Role)))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	for _, att := range msg.Attachments {
		sb.WriteString(fmt.Sprintf("                    <p class=\"attachment\">Attachment: <code>%s</code></p>\n",
			html.EscapeString(att.Name)))
	}
	sb.WriteString(e.formatContent(msg.Content))
	sb.WriteString("                </div>\n")

	sb.WriteString("            </div>\n")

	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

var codeBlockRegex = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
var inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")

// formatContent converts markdown-ish message content to HTML. Fenced
// code blocks are syntax-highlighted; everything else is escaped and
// wrapped in paragraphs.
func (e *HTMLExporter) formatContent(content string) string {
	var sb strings.Builder
	last := 0

	for _, loc := range codeBlockRegex.FindAllStringSubmatchIndex(content, -1) {
		sb.WriteString(e.formatProse(content[last:loc[0]]))

		lang := content[loc[2]:loc[3]]
		code := content[loc[4]:loc[5]]
		sb.WriteString(e.formatCodeBlock(lang, code))

		last = loc[1]
	}
	sb.WriteString(e.formatProse(content[last:]))

	return sb.String()
}

// formatCodeBlock renders one fenced block with chroma highlighting. The
// language label comes from model output, so it is escaped before it is
// placed in markup.
func (e *HTMLExporter) formatCodeBlock(lang, code string) string {
	code = strings.TrimRight(code, "\n")

	langLabel := ""
	if lang != "" {
		langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
	}

	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, code, lang, "html", e.chromaStyle()); err != nil {
		highlighted.Reset()
		highlighted.WriteString("<pre><code>")
		highlighted.WriteString(html.EscapeString(code))
		highlighted.WriteString("</code></pre>")
	}

	return fmt.Sprintf("<div class=\"code-block\">%s%s</div>\n", langLabel, highlighted.String())
}

// formatProse escapes plain text and converts blank-line-separated runs
// into paragraphs, with inline code spans preserved.
func (e *HTMLExporter) formatProse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = html.EscapeString(text)
	text = inlineCodeRegex.ReplaceAllString(text, "<code class=\"inline-code\">$1</code>")

	var sb strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(para, "\n", "<br>\n"))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Fira Code", "Source Code Pro", monospace;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --user-bg: #f6f8fa;
            --model-bg: #ffffff;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --model-bg: #24283b;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 { font-size: 28px; margin-bottom: 16px; }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
        }

        .conversation { padding: 24px 32px; }

        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
        }

        .user-message { background: var(--user-bg); border-left-color: var(--accent-blue); }
        .model-message { background: var(--model-bg); border-left-color: var(--accent-green); }

        .message-header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .role-label { font-weight: 600; }

        .timestamp {
            color: var(--text-muted);
            font-size: 13px;
            font-family: var(--font-mono);
        }

        .message-content p { margin-bottom: 12px; }
        .message-content p:last-child { margin-bottom: 0; }

        .attachment { font-size: 13px; color: var(--text-muted); }

        .code-block {
            margin: 16px 0;
            border-radius: 8px;
            overflow: hidden;
            border: 1px solid var(--border-color);
        }

        .code-lang {
            padding: 8px 16px;
            background: var(--bg-tertiary);
            font-size: 12px;
            font-weight: 600;
            color: var(--text-secondary);
            text-transform: uppercase;
        }

        .code-block pre {
            margin: 0;
            padding: 16px;
            overflow-x: auto;
            font-family: var(--font-mono);
            font-size: 14px;
        }

        .inline-code {
            font-family: var(--font-mono);
            font-size: 14px;
            padding: 2px 6px;
            background: var(--bg-tertiary);
            border-radius: 4px;
        }

        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }

        @media print {
            body { padding: 0; }
            .container { border-radius: 0; }
            .message { page-break-inside: avoid; }
        }
    </style>
`
}
