package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"weave/internal/driver"
	"weave/internal/model"
	"weave/internal/sema"
	"weave/internal/trace"
	"weave/internal/vm"
	"weave/runtime/wasmrt"
)

var routeCmd = &cobra.Command{
	Use:   "route [flags] file.wv [payload|-]",
	Short: "Show which handler a wire message is routed to",
	Long: `Decode a JSON message against a contract's combined union and print the
handler it reaches and the fields it carries. With --entry the host entry
point is simulated, so overridden kinds report their override function.
A reply payload is a sub-message result: {"id":..,"result":{"ok":{..}}}.
The payload is read from stdin when omitted or "-".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRoute,
}

var encodeCmd = &cobra.Command{
	Use:   "encode [flags] file.wv key [field=json]...",
	Short: "Build the wire form of one case",
	Long: `Encode the case a handler key names, e.g. "increment" or "cw1.freeze",
from field values given as name=<json>.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEncode,
}

func init() {
	for _, c := range []*cobra.Command{routeCmd, encodeCmd} {
		c.Flags().String("contract", "", "contract name (default: the only contract of the file)")
		c.Flags().String("kind", "exec", "message kind (instantiate|exec|query|sudo|migrate|reply)")
	}
	routeCmd.Flags().Bool("entry", false, "go through the entry point, honouring overrides")
	routeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

// routeOutput is the json form of a routed message.
type routeOutput struct {
	Contract string       `json:"contract"`
	Kind     string       `json:"kind"`
	Key      string       `json:"key,omitempty"`
	Wrapper  string       `json:"wrapper,omitempty"`
	Override string       `json:"override,omitempty"`
	Fields   []fieldValue `json:"fields,omitempty"`
}

type fieldValue struct {
	Name  string         `json:"name"`
	Value jsontext.Value `json:"value"`
}

func parseKind(s string) (model.Kind, error) {
	for _, k := range model.Kinds {
		if s == k.String() || s == k.Wire() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q (expected instantiate|exec|query|sudo|migrate|reply)", s)
}

// loadMachine analyzes file with its imports and builds a machine for the
// selected contract.
func loadMachine(cmd *cobra.Command, file string) (*vm.Machine, model.Kind, error) {
	contract, err := cmd.Flags().GetString("contract")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get contract flag: %w", err)
	}
	kindValue, err := cmd.Flags().GetString("kind")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get kind flag: %w", err)
	}
	kind, err := parseKind(kindValue)
	if err != nil {
		return nil, 0, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	in, err := resolveInputs([]string{file})
	if err != nil {
		return nil, 0, err
	}
	policy := sema.AliasReject
	if in.manifest != nil {
		if policy, err = sema.ParseAliasPolicy(in.manifest.Config.Compose.AliasCollision); err != nil {
			return nil, 0, err
		}
	}
	res, err := driver.Analyze(cmd.Context(), in.files, driver.Options{
		BaseDir:        in.baseDir,
		Roots:          in.roots,
		MaxDiagnostics: maxDiagnostics,
		AliasCollision: policy,
	})
	if err != nil {
		return nil, 0, err
	}
	if err := printStderrDiagnostics(cmd, res.Bag, res.FileSet); err != nil {
		return nil, 0, err
	}
	fr := res.File(in.files[0])
	if fr == nil || fr.Model == nil || res.Bag.HasErrors() {
		return nil, 0, errDiagnostics
	}

	if contract == "" {
		switch len(fr.Model.Contracts) {
		case 0:
			return nil, 0, fmt.Errorf("%s declares no contract", file)
		case 1:
			contract = fr.Model.Contracts[0].Contract.Name
		default:
			names := make([]string, 0, len(fr.Model.Contracts))
			for _, c := range fr.Model.Contracts {
				names = append(names, c.Contract.Name)
			}
			return nil, 0, fmt.Errorf("%s declares several contracts, pass --contract (%s)", file, strings.Join(names, ", "))
		}
	}
	m, err := vm.New(fr.Model, contract, vm.Options{Tracer: trace.FromContext(cmd.Context())})
	if err != nil {
		return nil, 0, err
	}
	return m, kind, nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	entry, err := cmd.Flags().GetBool("entry")
	if err != nil {
		return fmt.Errorf("failed to get entry flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	m, kind, err := loadMachine(cmd, args[0])
	if err != nil {
		return err
	}
	payload, err := readPayload(cmd, args[1:])
	if err != nil {
		return err
	}

	// обработчики только фиксируют вызов
	m.RegisterAll(func(*vm.Call) (jsontext.Value, error) { return jsontext.Value("null"), nil })
	for _, ov := range m.Plan().Contract.Overrides {
		if ov != nil {
			m.Override(ov.Handler, func(model.Kind, jsontext.Value) (jsontext.Value, error) {
				return jsontext.Value("null"), nil
			})
		}
	}

	var res *vm.Result
	switch {
	case kind == model.KindReply:
		var r wasmrt.Reply
		if err := json.Unmarshal(payload, &r); err != nil {
			return fmt.Errorf("invalid reply payload: %w", err)
		}
		if entry {
			res, err = m.Reply(r)
		} else {
			var call *vm.Call
			call, err = m.RouteReply(r)
			res = &vm.Result{Call: call}
		}
	case entry:
		res, err = m.Entry(kind, payload)
	default:
		var call *vm.Call
		call, err = m.Decode(kind, payload)
		res = &vm.Result{Call: call}
	}
	if err != nil {
		return err
	}

	out := routeOutput{Contract: m.Plan().Contract.Name, Kind: kind.String(), Override: res.Override}
	if c := res.Call; c != nil {
		out.Key = c.Key()
		if c.Wrapper != nil {
			out.Wrapper = c.Wrapper.Field
		}
		for _, f := range c.Fields {
			out.Fields = append(out.Fields, fieldValue{Name: f.Name, Value: f.Value})
		}
	}
	return writeRoute(cmd.OutOrStdout(), out, format)
}

func writeRoute(w io.Writer, out routeOutput, format string) error {
	if format == "json" {
		if err := json.MarshalWrite(w, out, json.Deterministic(true), jsontext.WithIndent("  ")); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	if out.Override != "" {
		_, err := fmt.Fprintf(w, "%s %s -> override %s\n", out.Contract, out.Kind, out.Override)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s -> %s\n", out.Contract, out.Kind, out.Key); err != nil {
		return err
	}
	for _, f := range out.Fields {
		if _, err := fmt.Fprintf(w, "  %s = %s\n", f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return data, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	m, kind, err := loadMachine(cmd, args[0])
	if err != nil {
		return err
	}
	if kind == model.KindReply {
		return fmt.Errorf("replies are routed by id and have no wire case")
	}
	key := args[1]
	values := make(map[string]jsontext.Value, len(args)-2)
	for _, arg := range args[2:] {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("field %q: expected name=<json>", arg)
		}
		v := jsontext.Value(raw)
		if !v.IsValid() {
			return fmt.Errorf("field %s: %q is not valid JSON", name, raw)
		}
		values[name] = v
	}
	if !slices.Contains(m.Keys(), key) {
		return fmt.Errorf("%s has no case %q (known: %s)", m.Plan().Contract.Name, key, strings.Join(m.Keys(), ", "))
	}
	data, err := m.Encode(kind, key, values)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
