// Package chat provides chat and retrieval configuration options.
package chat

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/JhonatanRC03/chat-rag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// DefaultSystemPrompt is the default system prompt for the chat assistant.
const DefaultSystemPrompt = `Eres un asistente inteligente especializado en responder preguntas basándote en documentos proporcionados.

INSTRUCCIONES:
1. Usa ÚNICAMENTE la información de los documentos proporcionados para responder
2. Si la información no está en los documentos, di claramente que no tienes esa información
3. Proporciona respuestas precisas, concisas y útiles
4. Cita las fuentes cuando sea relevante mencionando el nombre del documento
5. Si hay múltiples documentos relevantes, puedes combinar la información
6. Mantén un tono profesional pero amigable
7. Si la pregunta no está relacionada con los documentos, redirige amablemente al usuario

FORMATO DE RESPUESTA:
- Responde de manera directa y clara
- Usa bullet points cuando sea apropiado
- Menciona las fuentes al final si es relevante

Recuerda: Solo usa la información de los documentos proporcionados en el contexto.`

// Options contains chat-specific configuration.
type Options struct {
	// TopK is the number of documents retrieved per query.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// ContextDocs is the number of retrieved documents included in the
	// grounding context sent to the model.
	ContextDocs int `json:"context-docs" mapstructure:"context-docs"`

	// MaxHistory is the number of history messages kept per conversation.
	MaxHistory int `json:"max-history" mapstructure:"max-history"`

	// ContextCharLimit truncates each passage included in the context.
	ContextCharLimit int `json:"context-char-limit" mapstructure:"context-char-limit"`

	// SystemPrompt is the system prompt for chat requests.
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`

	// Temperature is the sampling temperature for generation.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// TopP is the nucleus sampling parameter for generation.
	TopP float64 `json:"top-p" mapstructure:"top-p"`

	// MaxTokens caps the generated answer length.
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		TopK:             5,
		ContextDocs:      3,
		MaxHistory:       6,
		ContextCharLimit: 1000,
		SystemPrompt:     DefaultSystemPrompt,
		Temperature:      0.3,
		TopP:             0.9,
		MaxTokens:        1000,
	}
}

// AddFlags adds flags for chat options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"chat.top-k", o.TopK, "Number of documents retrieved per query.")
	fs.IntVar(&o.ContextDocs, options.Join(prefixes...)+"chat.context-docs", o.ContextDocs, "Number of retrieved documents included in the model context.")
	fs.IntVar(&o.MaxHistory, options.Join(prefixes...)+"chat.max-history", o.MaxHistory, "Number of history messages kept per conversation.")
	fs.IntVar(&o.ContextCharLimit, options.Join(prefixes...)+"chat.context-char-limit", o.ContextCharLimit, "Character limit per passage in the model context.")
	fs.Float64Var(&o.Temperature, options.Join(prefixes...)+"chat.temperature", o.Temperature, "Sampling temperature for answer generation.")
	fs.Float64Var(&o.TopP, options.Join(prefixes...)+"chat.top-p", o.TopP, "Nucleus sampling parameter for answer generation.")
	fs.IntVar(&o.MaxTokens, options.Join(prefixes...)+"chat.max-tokens", o.MaxTokens, "Maximum tokens in the generated answer.")
}

// Validate validates the chat options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("chat.top-k must be positive"))
	}
	if o.ContextDocs <= 0 || o.ContextDocs > o.TopK {
		errs = append(errs, fmt.Errorf("chat.context-docs must be in [1, top-k]"))
	}
	if o.MaxHistory < 0 {
		errs = append(errs, fmt.Errorf("chat.max-history must not be negative"))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("chat.temperature must be in [0, 2]"))
	}
	if o.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("chat.max-tokens must be positive"))
	}
	return errs
}

// Complete completes the chat options with defaults.
func (o *Options) Complete() error {
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.ContextCharLimit <= 0 {
		o.ContextCharLimit = 1000
	}
	return nil
}
