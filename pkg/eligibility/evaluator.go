package eligibility

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/logger"
	"github.com/shopeval/shopeval/pkg/model"
)

// 单条规则评估结果
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
)

// Recorder 规则评估指标记录
type Recorder interface {
	RecordRuleEvaluation(category, outcome string)
	RecordRuleError(category, code string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRuleEvaluation(string, string) {}
func (noopRecorder) RecordRuleError(string, string) {}

// Result 评估结果
type Result struct {
	Passed      bool               `json:"passed"`
	FailedRules []model.FailedRule `json:"failed_rules"`
}

// compiledRule 规则及其解析后的条件
type compiledRule struct {
	rule model.EligibilityRule
	cond Condition
}

// Evaluator 资格规则评估器，构造后只读，可并发使用
type Evaluator struct {
	rules    []compiledRule
	log      *logger.EngineLogger
	recorder Recorder
	now      func() time.Time
}

// Option 评估器选项
type Option func(*Evaluator)

// WithLogger 指定日志器
func WithLogger(l *zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.log = logger.NewEngineLogger(l, "eligibility")
	}
}

// WithRecorder 指定指标记录器
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock 指定时钟（上下文未给出 AsOf 时使用）
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator 创建评估器
// 规则按优先级升序稳定排序（同优先级保持输入顺序），条件文档在此一次性解析
func NewEvaluator(rules []model.EligibilityRule, opts ...Option) *Evaluator {
	e := &Evaluator{
		rules:    make([]compiledRule, 0, len(rules)),
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.NewEngineLogger(nil, "eligibility")
	}

	for _, r := range rules {
		e.rules = append(e.rules, compiledRule{rule: r, cond: ParseCondition(r.Condition)})
	}
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].rule.Priority < e.rules[j].rule.Priority
	})

	return e
}

// Rules 返回排序后的规则
func (e *Evaluator) Rules() []model.EligibilityRule {
	result := make([]model.EligibilityRule, len(e.rules))
	for i := range e.rules {
		result[i] = e.rules[i].rule
	}
	return result
}

// Len 规则数量
func (e *Evaluator) Len() int {
	return len(e.rules)
}

// Evaluate 按优先级评估全部启用规则
// 不提前退出：未通过的规则全部记录，只有阻断规则影响最终结论
func (e *Evaluator) Evaluate(ec *EvaluationContext) Result {
	// 在副本上补全评估日期
	local := EvaluationContext{}
	if ec != nil {
		local = *ec
	}
	if local.AsOf.IsZero() {
		local.AsOf = e.now()
	}

	result := Result{
		Passed:      true,
		FailedRules: make([]model.FailedRule, 0),
	}

	for i := range e.rules {
		cr := &e.rules[i]
		if !cr.rule.IsActive {
			continue
		}

		category := string(cr.rule.RuleCategory)
		ruleID := cr.rule.ID.String()

		passed, reason, err := e.evaluateRule(cr, &local)
		if err != nil {
			e.log.RuleError(ruleID, cr.rule.RuleName, err)
			e.recorder.RecordRuleEvaluation(category, OutcomeError)
			e.recorder.RecordRuleError(category, string(apperrors.GetCode(err)))
			continue
		}

		if passed {
			e.recorder.RecordRuleEvaluation(category, OutcomePass)
			continue
		}

		e.recorder.RecordRuleEvaluation(category, OutcomeFail)
		e.log.RuleFailed(ruleID, cr.rule.RuleName, cr.rule.IsBlocking, reason)
		result.FailedRules = append(result.FailedRules, model.FailedRule{
			RuleID:       ruleID,
			RuleName:     cr.rule.RuleName,
			RuleCategory: cr.rule.RuleCategory,
			Reason:       reason,
		})
		if cr.rule.IsBlocking {
			result.Passed = false
		}
	}

	return result
}

// evaluateRule 单条规则的错误边界：错误与 panic 均按放行处理
func (e *Evaluator) evaluateRule(cr *compiledRule, ec *EvaluationContext) (passed bool, reason string, err error) {
	defer func() {
		if p := recover(); p != nil {
			passed, reason = true, ""
			err = apperrors.New(apperrors.CodeRulePanic, fmt.Sprintf("规则评估 panic: %v", p))
		}
	}()

	passed, reason, err = cr.cond.evaluate(ec)
	if err != nil {
		passed, reason = true, ""
	}
	return passed, reason, err
}
