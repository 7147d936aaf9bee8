// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n translates UI text using GNU gettext .po catalogues.

The Chinese UI text is the msgid; do not invent keys. Page titles and labels are
written in Chinese in the source and translated for other locales:

	i18n.Tr(ctx, "模型训练")
	i18n.Tr(ctx, "共 {{.Count}} 个任务", "Count", n)

Missing translations return the msgid unchanged. When strict mode is enabled they
are logged once per locale and msgid and visibly wrapped as "⟦...⟧".
*/
package i18n
