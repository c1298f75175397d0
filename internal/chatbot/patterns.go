package chatbot

import "regexp"

// NewDefaultResponder builds the stock French and Arabic support tables.
// Order matters: the first matching pattern wins.
func NewDefaultResponder() *Responder {
	return &Responder{tables: map[string][]entry{
		"fr": {
			qa(`(?i)comment.*va`, "Je suis fantastique"),
			qa(`(?i)créer.*compte`, "Vous pouvez créer un compte en entrant votre numéro national et en fournissant une pièce d'identité. Rendez-vous sur la page d'inscription et suivez les instructions."),
			qa(`(?i)historique.*médical`, "Vous pouvez consulter votre historique médical en vous connectant à votre compte, puis en accédant à la section 'Historique médical'."),
			qa(`(?i)télécharger.*ordonnances`, "Oui, vous pouvez télécharger vos ordonnances au format PDF depuis la section 'Ordonnances' de votre compte."),
			qa(`(?i)qui.*accéder.*dossier`, "Seulement vous, votre médecin traitant et certains spécialistes autorisés peuvent accéder à votre dossier médical."),
			qa(`(?i)modifier.*informations`, "Vous pouvez modifier vos informations personnelles en allant dans 'Paramètres', puis en sélectionnant 'Modifier les informations personnelles'. Vous devrez peut-être fournir des documents justificatifs pour certaines modifications."),
			qa(`(?i)oublie.*mot de passe`, "Cliquez sur 'Mot de passe oublié' sur la page de connexion et suivez les instructions pour le réinitialiser."),
			qa(`(?i)ajouter.*ordonnance`, "Votre médecin peut ajouter de nouvelles ordonnances directement à votre dossier via la plateforme ChronoCare."),
			qa(`(?i)données.*sécurisées`, "Oui, ChronoCare utilise un chiffrement avancé et respecte les lois de protection des données comme le GDPR."),
			qa(`(?i)partager.*dossier`, "Oui, vous pouvez créer un lien sécurisé qui donne au médecin un accès temporaire à votre dossier."),
			qa(`(?i)supprimer.*compte`, "Vous pouvez demander la suppression de votre compte en allant dans 'Paramètres', puis en cliquant sur 'Supprimer le compte'."),
		},
		"ar": {
			qa(`(?i)كيف.*حالك`, "أنا رائع"),
			qa(`(?i)إنشاء.*حساب`, "يمكنك إنشاء حساب بإدخال رقم هويتك الوطنية وتقديم إثبات هوية. انتقل إلى صفحة التسجيل واتبع التعليمات."),
			qa(`(?i)تاريخي.*طبي`, "يمكنك مشاهدة تاريخك الطبي عن طريق تسجيل الدخول إلى حسابك، ثم الانتقال إلى قسم 'التاريخ الطبي'."),
			qa(`(?i)تحميل.*وصفات`, "نعم، يمكنك تنزيل وصفاتك الطبية بصيغة PDF من قسم 'الوصفات الطبية' في حسابك."),
			qa(`(?i)من.*يمكنه.*الوصول`, "فقط أنت، وطبيبك المعالج، وبعض المتخصصين المصرح لهم يمكنهم الوصول إلى ملفك الطبي."),
			qa(`(?i)تعديل.*بيانات`, "يمكنك تعديل بياناتك من خلال الذهاب إلى 'الإعدادات' ثم اختيار 'تعديل المعلومات الشخصية'. قد تحتاج إلى تقديم وثائق داعمة لبعض التعديلات."),
			qa(`(?i)نسيت.*كلمة.*المرور`, "اضغط على 'نسيت كلمة المرور' في صفحة تسجيل الدخول واتبع التعليمات لإعادة تعيينها."),
			qa(`(?i)إضافة.*وصفة`, "يمكن لطبيبك إضافة وصفات طبية جديدة مباشرة إلى ملفك عبر منصة ChronoCare."),
			qa(`(?i)بياناتي.*آمنة`, "نعم، تستخدم ChronoCare تشفيرًا متقدمًا وتلتزم بقوانين حماية البيانات مثل GDPR."),
			qa(`(?i)مشاركة.*ملفي`, "نعم، يمكنك إنشاء رابط آمن يمنح الطبيب الآخر حق الوصول المؤقت إلى ملفك."),
			qa(`(?i)حذف.*حساب`, "يمكنك طلب حذف حسابك من خلال الانتقال إلى 'الإعدادات' ثم الضغط على 'حذف الحساب'."),
		},
	}}
}

func qa(pattern, response string) entry {
	return entry{pattern: regexp.MustCompile(pattern), response: response}
}
